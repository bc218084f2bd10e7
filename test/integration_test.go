package test

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
	"chat-relay/sink"
	"chat-relay/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type world struct {
	auth    services.IAuthService
	chat    services.IChatService
	groups  services.IGroupService
	uploads services.IUploadService
}

func newWorld(t *testing.T) world {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	blobs, err := storage.NewBlobStore(t.TempDir())
	req.NoError(err)

	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	groupRepository := repositories.NewGroupRepository(db)
	fileRepository := repositories.NewFileRepository(db)

	registry := runtime.NewRegistry()
	membership := runtime.NewMembership(log, registry, groupRepository)
	dispatcher := runtime.NewDispatcher(log, registry, membership, groupRepository)
	moderator, err := moderation.NewModerator([]string{"flibbertigibbet"}, '*')
	req.NoError(err)
	pipeline := runtime.NewPipeline(log, messageRepository, userRepository,
		groupRepository, fileRepository, dispatcher, moderator)

	tokens := auth.NewTokenIssuer("integration-secret", time.Hour)
	return world{
		auth:    services.NewAuthService(userRepository, tokens),
		chat:    services.NewChatService(registry, membership, pipeline, messageRepository, groupRepository),
		groups:  services.NewGroupService(groupRepository),
		uploads: services.NewUploadService(log, blobs, fileRepository, pipeline),
	}
}

func (w world) register(t *testing.T, name string) domain.UserIdentity {
	t.Helper()
	identity, _, err := w.auth.Register(name, "s3cret-enough")
	require.NoError(t, err)
	return identity
}

// connect opens a session with its own inbox already joined, the way a
// fresh websocket connection does.
func (w world) connect(t *testing.T, identity domain.UserIdentity, capacity int) (string, *sink.QueueSink) {
	t.Helper()
	queue := sink.NewQueueSink(capacity)
	token := w.chat.Connect(identity, queue)
	require.NoError(t, w.chat.JoinPrivate(token))
	return token, queue
}

func receiveMessage(t *testing.T, queue *sink.QueueSink) domain.Message {
	t.Helper()
	select {
	case e := <-queue.Events:
		stored, ok := e.(event.MessageStored)
		require.True(t, ok)
		return stored.Message
	case <-time.After(time.Second):
		require.Fail(t, "Timeout: no event reached the sink")
		return domain.Message{}
	}
}

func Test_PrivateConversationScenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	w := newWorld(t)

	alice := w.register(t, "alice")
	bob := w.register(t, "bob")

	// Given alice on two devices and bob on one
	laptopToken, laptop := w.connect(t, alice, 8)
	_, phone := w.connect(t, alice, 8)
	bobToken, bobQueue := w.connect(t, bob, 8)

	// When alice greets bob with a word the moderator dislikes
	sent, err := w.chat.Send(ctx, laptopToken, services.SendRequest{
		RecipientID: bob.ID, Content: "hello you flibbertigibbet",
	})
	req.NoError(err)
	req.Equal(uint64(1), sent.Seq)
	req.Equal("hello you ***************", sent.Content)

	// Then every session of both parties sees the censored message once
	for _, queue := range []*sink.QueueSink{laptop, phone, bobQueue} {
		received := receiveMessage(t, queue)
		req.Equal(sent.ID, received.ID)
		req.Equal("hello you ***************", received.Content)
	}

	// When bob replies
	reply, err := w.chat.Send(ctx, bobToken, services.SendRequest{
		RecipientID: alice.ID, Content: "hello alice",
	})
	req.NoError(err)

	// Then the reply continues the same sequence space
	req.Equal(uint64(2), reply.Seq)

	// And both users read the exact same ordered history
	aliceView, _, err := w.chat.PrivateHistory(alice.ID, bob.ID, nil, nil)
	req.NoError(err)
	bobView, _, err := w.chat.PrivateHistory(bob.ID, alice.ID, nil, nil)
	req.NoError(err)
	req.Equal(aliceView, bobView)
	req.Equal([]uint64{1, 2}, lo.Map(aliceView, func(m domain.Message, _ int) uint64 { return m.Seq }))
}

func Test_GroupScenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	w := newWorld(t)

	alice := w.register(t, "alice")
	bob := w.register(t, "bob")
	carol := w.register(t, "carol")

	team, err := w.groups.CreateGroup(alice.ID, "team", []string{bob.ID})
	req.NoError(err)

	aliceToken, aliceQueue := w.connect(t, alice, 8)
	bobToken, bobQueue := w.connect(t, bob, 8)
	carolToken, carolQueue := w.connect(t, carol, 8)

	// Members join the group channel, the outsider is turned away
	req.NoError(w.chat.JoinGroup(aliceToken, team.ID))
	req.NoError(w.chat.JoinGroup(bobToken, team.ID))
	err = w.chat.JoinGroup(carolToken, team.ID)
	req.True(errors.IsAuthorization(err))

	// When alice posts to the group
	sent, err := w.chat.Send(ctx, aliceToken, services.SendRequest{
		GroupID: team.ID, Content: "standup in 5",
	})
	req.NoError(err)

	// Then both members receive it live, carol receives nothing
	req.Equal(sent.ID, receiveMessage(t, aliceQueue).ID)
	req.Equal(sent.ID, receiveMessage(t, bobQueue).ID)
	req.Empty(carolQueue.Events)

	// A member who was offline catches up through history
	history, _, err := w.chat.GroupHistory(bob.ID, team.ID, nil, nil)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("standup in 5", history[0].Content)

	// The outsider cannot even read it
	_, _, err = w.chat.GroupHistory(carol.ID, team.ID, nil, nil)
	req.True(errors.IsAuthorization(err))

	// And a non-member send is rejected before persistence
	_, err = w.chat.Send(ctx, carolToken, services.SendRequest{
		GroupID: team.ID, Content: "let me in",
	})
	req.ErrorIs(err, errors.ErrNotAMember)
}

func Test_UploadBridgeScenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	w := newWorld(t)

	alice := w.register(t, "alice")
	bob := w.register(t, "bob")
	_, _ = w.connect(t, alice, 8)
	_, bobQueue := w.connect(t, bob, 8)

	// When alice uploads a file addressed to bob
	meta, message, err := w.uploads.Upload(ctx, alice.ID,
		domain.PrivateChannel(bob.ID), "notes.txt", strings.NewReader("meeting notes"))
	req.NoError(err)

	// Then the upload arrived as a regular message carrying the metadata
	req.Equal(domain.KindFile, message.Kind)
	req.NotNil(message.File)
	req.Equal(meta.ID, message.File.ID)
	req.Equal("notes.txt", message.Content)

	received := receiveMessage(t, bobQueue)
	req.Equal(message.ID, received.ID)
	req.Equal(domain.KindFile, received.Kind)

	// And it shares the conversation's sequence space with typed messages
	history, _, err := w.chat.PrivateHistory(bob.ID, alice.ID, nil, nil)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(uint64(1), history[0].Seq)

	// The file is listed and downloadable for the conversation
	metas, err := w.uploads.ListFiles(domain.PrivateChannel(bob.ID))
	req.NoError(err)
	req.Len(metas, 1)
	downloaded, file, _, err := w.uploads.Download(meta.ID)
	req.NoError(err)
	defer file.Close()
	req.Equal("notes.txt", downloaded.OriginalName)
}

func Test_ConcurrentSendsKeepSequencesDense(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	w := newWorld(t)

	alice := w.register(t, "alice")
	bob := w.register(t, "bob")
	aliceToken, _ := w.connect(t, alice, 64)
	bobToken, _ := w.connect(t, bob, 64)

	// When both sides hammer the same conversation concurrently
	const sendsPerSide = 10
	var wg sync.WaitGroup
	for i := 0; i < sendsPerSide; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := w.chat.Send(ctx, aliceToken, services.SendRequest{RecipientID: bob.ID, Content: "ping"})
			req.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := w.chat.Send(ctx, bobToken, services.SendRequest{RecipientID: alice.ID, Content: "pong"})
			req.NoError(err)
		}()
	}
	wg.Wait()

	// Then the shared scope holds every message exactly once, densely numbered
	history, _, err := w.chat.PrivateHistory(alice.ID, bob.ID, nil, nil)
	req.NoError(err)
	req.Len(history, 2*sendsPerSide)
	for i, message := range history {
		req.Equal(uint64(i+1), message.Seq)
	}
}

func Test_DisconnectedSessionReceivesNothing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	w := newWorld(t)

	alice := w.register(t, "alice")
	bob := w.register(t, "bob")
	aliceToken, _ := w.connect(t, alice, 8)
	bobToken, bobQueue := w.connect(t, bob, 8)

	// Given bob disconnecting before alice sends
	w.chat.Disconnect(bobToken)

	sent, err := w.chat.Send(ctx, aliceToken, services.SendRequest{
		RecipientID: bob.ID, Content: "are you there?",
	})
	req.NoError(err)

	// Then bob's dead sink got nothing, but the message is durable
	req.Empty(bobQueue.Events)
	history, _, err := w.chat.PrivateHistory(bob.ID, alice.ID, nil, nil)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(sent.ID, history[0].ID)
}
