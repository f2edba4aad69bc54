package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/studyhub-backend/internal/domain"
)

func sendDirect(t *testing.T, repo MessageRepository, sender, receiver, body string) *domain.DirectMessage {
	t.Helper()
	msg := &domain.DirectMessage{
		SenderID:   sender,
		ReceiverID: receiver,
		Body:       body,
		SentAt:     time.Now(),
	}
	require.NoError(t, repo.CreateDirect(msg))
	return msg
}

func TestCreateAndListConversation(t *testing.T) {
	repo := NewMessageRepository(setupDB(t))

	sendDirect(t, repo, "alice", "bob", "hi")
	sendDirect(t, repo, "bob", "alice", "hello")
	sendDirect(t, repo, "alice", "bob", "how are you")
	sendDirect(t, repo, "alice", "carol", "unrelated")

	msgs, err := repo.ListConversation("alice", "bob", 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	// Newest-first from the repository
	assert.Equal(t, "how are you", msgs[0].Body)
	assert.Equal(t, "hello", msgs[1].Body)
	assert.Equal(t, "hi", msgs[2].Body)

	// Pagination
	page, err := repo.ListConversation("alice", "bob", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "hello", page[0].Body)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	repo := NewMessageRepository(setupDB(t))

	msg := sendDirect(t, repo, "alice", "bob", "hi")

	require.NoError(t, repo.MarkAsRead(msg.ID))
	first, err := repo.FindDirectByID(msg.ID)
	require.NoError(t, err)
	assert.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)

	// Second mark is a no-op: read_at keeps its original value
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.MarkAsRead(msg.ID))
	second, err := repo.FindDirectByID(msg.ID)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.Equal(t, first.ReadAt.Unix(), second.ReadAt.Unix())
}

func TestListConversationsUnreadCounts(t *testing.T) {
	repo := NewMessageRepository(setupDB(t))

	sendDirect(t, repo, "bob", "alice", "one")
	sendDirect(t, repo, "bob", "alice", "two")
	sendDirect(t, repo, "alice", "bob", "reply")
	sendDirect(t, repo, "carol", "alice", "hey")

	summaries, err := repo.ListConversations("alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byCounterpart := make(map[string]*domain.ConversationSummary)
	for _, s := range summaries {
		byCounterpart[s.CounterpartID] = s
	}

	bob := byCounterpart["bob"]
	require.NotNil(t, bob)
	assert.Equal(t, int64(2), bob.UnreadCount)
	assert.Equal(t, "reply", bob.LastMessage.Body)

	carol := byCounterpart["carol"]
	require.NotNil(t, carol)
	assert.Equal(t, int64(1), carol.UnreadCount)

	// Reading the whole conversation zeroes the count
	require.NoError(t, repo.MarkConversationRead("bob", "alice"))
	summaries, err = repo.ListConversations("alice")
	require.NoError(t, err)
	for _, s := range summaries {
		if s.CounterpartID == "bob" {
			assert.Equal(t, int64(0), s.UnreadCount)
		}
	}
}

func TestSoftDeleteExcludedFromReads(t *testing.T) {
	repo := NewMessageRepository(setupDB(t))

	msg := sendDirect(t, repo, "alice", "bob", "delete me")
	keep := sendDirect(t, repo, "alice", "bob", "keep me")

	require.NoError(t, repo.SoftDeleteDirect(msg.ID))

	msgs, err := repo.ListConversation("alice", "bob", 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, keep.ID, msgs[0].ID)

	summaries, err := repo.ListConversations("bob")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)

	// Gone from the scoped read path
	_, err = repo.FindDirectByID(msg.ID)
	assert.Error(t, err)

	// Still retrievable for audit
	audited, err := repo.FindDirectByIDUnscoped(msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "delete me", audited.Body)
}

func TestSoftDeleteMissingMessage(t *testing.T) {
	repo := NewMessageRepository(setupDB(t))
	assert.Error(t, repo.SoftDeleteDirect(12345))
}

func TestGroupMessagesPostOrder(t *testing.T) {
	repo := NewMessageRepository(setupDB(t))

	for _, body := range []string{"first", "second", "third"} {
		require.NoError(t, repo.CreateGroup(&domain.GroupMessage{
			GroupID:  7,
			AuthorID: "alice",
			Body:     body,
			PostedAt: time.Now(),
		}))
	}
	require.NoError(t, repo.CreateGroup(&domain.GroupMessage{
		GroupID:  8,
		AuthorID: "bob",
		Body:     "other group",
		PostedAt: time.Now(),
	}))

	msgs, err := repo.ListGroupMessages(7, 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "third", msgs[0].Body)
	assert.Equal(t, "first", msgs[2].Body)

	require.NoError(t, repo.SoftDeleteGroup(msgs[0].ID))
	msgs, err = repo.ListGroupMessages(7, 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}
