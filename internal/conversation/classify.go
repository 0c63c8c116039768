package conversation

import (
	conversationpkg "convbot/pkg/conversation"
)

// Classify turns a platform message into an utterance. Messages written by
// the bot are assistant turns and keep their text verbatim. Everything else is
// a user turn prefixed with the speaker's name, since the completion endpoint
// has no per-speaker field for user turns.
func Classify(msg conversationpkg.RawMessage, botID string) conversationpkg.Utterance {
	if msg.AuthorID == botID {
		return conversationpkg.Utterance{
			Role: conversationpkg.RoleAssistant,
			Text: msg.Text,
		}
	}
	return conversationpkg.Utterance{
		Role: conversationpkg.RoleUser,
		Text: msg.AuthorDisplayName + ": " + msg.Text,
	}
}

func systemUtterance(prompt string) conversationpkg.Utterance {
	return conversationpkg.Utterance{
		Role: conversationpkg.RoleSystem,
		Text: prompt,
	}
}
