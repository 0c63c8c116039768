package conversation_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"convbot/internal/conversation"
	conversationpkg "convbot/pkg/conversation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chain builds messages m1..mN where m(i) replies to m(i-1) and m1 is the root.
func chain(n int) map[string]conversationpkg.RawMessage {
	messages := make(map[string]conversationpkg.RawMessage, n)
	for i := 1; i <= n; i++ {
		msg := conversationpkg.RawMessage{
			ID:                strconv.Itoa(i),
			AuthorID:          "42",
			AuthorDisplayName: "alice",
			Text:              fmt.Sprintf("m%d", i),
			ChannelID:         "c1",
		}
		if i%2 == 0 {
			msg.AuthorID = botID
		}
		if i > 1 {
			msg.ParentMessageID = strconv.Itoa(i - 1)
		}
		messages[msg.ID] = msg
	}
	return messages
}

type mapResolver struct {
	messages map[string]conversationpkg.RawMessage
	calls    int
}

func (r *mapResolver) ResolveParent(_ context.Context, msg conversationpkg.RawMessage) (conversationpkg.RawMessage, error) {
	r.calls++
	parent, ok := r.messages[msg.ParentMessageID]
	if !ok {
		return conversationpkg.RawMessage{}, errors.New("unknown message")
	}
	return parent, nil
}

var _ = Describe("ReplyChain", func() {
	var (
		ctx       context.Context
		assembler *conversation.Assembler
	)

	BeforeEach(func() {
		ctx = context.Background()
		assembler = conversation.NewAssembler(botID, "be nice", conversationpkg.NewAllowList("c1"))
	})

	system := conversationpkg.Utterance{Role: conversationpkg.RoleSystem, Text: "be nice"}

	It("returns the chain oldest first behind the system prompt", func() {
		messages := chain(4)
		resolver := &mapResolver{messages: messages}

		transcript := assembler.ReplyChain(ctx, messages["4"], resolver)

		Expect(transcript).To(Equal(conversationpkg.Transcript{
			system,
			conversation.Classify(messages["1"], botID),
			conversation.Classify(messages["2"], botID),
			conversation.Classify(messages["3"], botID),
			conversation.Classify(messages["4"], botID),
		}))
		Expect(resolver.calls).To(Equal(3))
	})

	It("includes a trigger that replies to nothing", func() {
		messages := chain(1)
		resolver := &mapResolver{messages: messages}

		transcript := assembler.ReplyChain(ctx, messages["1"], resolver)

		Expect(transcript).To(Equal(conversationpkg.Transcript{
			system,
			{Role: conversationpkg.RoleUser, Text: "alice: m1"},
		}))
		Expect(resolver.calls).To(BeZero())
	})

	It("keeps the most recent messages of a long chain", func() {
		messages := chain(15)
		resolver := &mapResolver{messages: messages}

		transcript := assembler.ReplyChain(ctx, messages["15"], resolver)

		Expect(transcript).To(HaveLen(conversation.MaxReplyDepth + 1))
		Expect(transcript[0]).To(Equal(system))
		Expect(transcript[1]).To(Equal(conversation.Classify(messages["6"], botID)))
		Expect(transcript[10]).To(Equal(conversation.Classify(messages["15"], botID)))
	})

	It("stops at the depth cap when replies form a cycle", func() {
		a := conversationpkg.RawMessage{ID: "a", AuthorID: "42", AuthorDisplayName: "alice", Text: "ping", ParentMessageID: "b"}
		b := conversationpkg.RawMessage{ID: "b", AuthorID: botID, Text: "pong", ParentMessageID: "a"}
		resolver := &mapResolver{messages: map[string]conversationpkg.RawMessage{"a": a, "b": b}}

		transcript := assembler.ReplyChain(ctx, a, resolver)

		Expect(transcript).To(HaveLen(conversation.MaxReplyDepth + 1))
	})

	It("ends the chain when a parent cannot be resolved", func() {
		messages := chain(5)
		delete(messages, "2")
		resolver := &mapResolver{messages: messages}

		transcript := assembler.ReplyChain(ctx, messages["5"], resolver)

		Expect(transcript).To(Equal(conversationpkg.Transcript{
			system,
			conversation.Classify(messages["3"], botID),
			conversation.Classify(messages["4"], botID),
			conversation.Classify(messages["5"], botID),
		}))
	})

	It("is deterministic for identical inputs", func() {
		messages := chain(7)
		first := assembler.ReplyChain(ctx, messages["7"], &mapResolver{messages: messages})
		second := assembler.ReplyChain(ctx, messages["7"], &mapResolver{messages: messages})
		Expect(first).To(Equal(second))
	})
})
