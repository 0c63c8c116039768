package conversation

type Role = string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Utterance struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is an ordered, oldest-first sequence of utterances. A non-empty
// transcript always starts with exactly one system utterance.
type Transcript []Utterance

func (t Transcript) Empty() bool {
	return len(t) == 0
}

// RawMessage is a platform message reduced to what context assembly needs.
type RawMessage struct {
	ID                string `json:"id"`
	AuthorID          string `json:"author_id"`
	AuthorDisplayName string `json:"author_display_name"`
	Text              string `json:"text"`
	ParentMessageID   string `json:"parent_message_id,omitempty"`
	ChannelID         string `json:"channel_id"`
}

func (msg RawMessage) HasParent() bool {
	return msg.ParentMessageID != ""
}

type Thread struct {
	ChannelID       string
	ParentChannelID string
}

// AllowList is the set of channel IDs the bot is active in. It is built once
// and only read afterwards.
type AllowList map[string]struct{}

func NewAllowList(ids ...string) AllowList {
	list := make(AllowList, len(ids))
	for _, id := range ids {
		list[id] = struct{}{}
	}
	return list
}

func (list AllowList) Contains(id string) bool {
	_, ok := list[id]
	return ok
}
