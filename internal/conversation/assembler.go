package conversation

import (
	"errors"

	conversationpkg "convbot/pkg/conversation"
)

const (
	// MaxReplyDepth caps how many messages of a reply chain are visited.
	MaxReplyDepth = 10
	// ThreadWindowSize is how many recent thread messages are fetched.
	ThreadWindowSize = 10
)

var ErrOrphanThread = errors.New("thread has no parent channel")

// Assembler builds transcripts for the completion endpoint. Its fields are
// configuration loaded at startup and are never mutated, so one Assembler can
// serve concurrent events.
type Assembler struct {
	BotID        string
	SystemPrompt string
	AllowList    conversationpkg.AllowList
}

func NewAssembler(botID, systemPrompt string, allowList conversationpkg.AllowList) *Assembler {
	return &Assembler{
		BotID:        botID,
		SystemPrompt: systemPrompt,
		AllowList:    allowList,
	}
}
