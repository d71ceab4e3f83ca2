package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/internal/chat/repository"
	"chat_sync_service/pkg/database"
	"chat_sync_service/pkg/logger"
	"chat_sync_service/pkg/middlewares"
	testtool "chat_sync_service/pkg/test_tool"
	token "chat_sync_service/pkg/token"
)

var (
	serverAddr string
	aliceToken string
	bobToken   string
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	ctx := context.Background()

	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:latest",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("Failed to start MongoDB container: %v", err)
	}

	redisContainer, redisHost, redisPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:latest",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		log.Fatalf("Failed to start Redis container: %v", err)
	}

	mongo, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: 2,
	}, "chat_test")
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	redisClient, err := database.NewRedisDirectClient(fmt.Sprintf("%s:%s", redisHost, redisPort), 0)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	convRepo := repository.NewMongoConversationRepository(mongo.Database)
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	pubsub := repository.NewRedisPubSub(redisClient)

	convUC := NewConversationUseCase(convRepo, msgRepo)
	msgUC := NewMessageUseCase(convRepo, msgRepo, pubsub, nil)
	restHandler := NewChatRestHandler(convUC, msgUC, nil)
	wsHandler := NewChatWebsocketHandler(convUC, msgUC, pubsub)

	r := fiber.New()
	r.Use(middlewares.JWTMiddleware())
	r.Get("/ws", fiberws.New(func(c *fiberws.Conn) {
		wsHandler.HandleConnection(context.Background(), c)
	}))
	r.Get("/conversations", restHandler.ListConversations)
	r.Post("/conversations/direct", restHandler.StartDirect)
	r.Post("/conversations/:id/pin", restHandler.TogglePin)
	r.Post("/conversations/:id/archive", restHandler.ToggleArchive)
	r.Post("/conversations/:id/read", restHandler.MarkRead)
	r.Get("/conversations/:id/messages", restHandler.ListMessages)
	r.Post("/conversations/:id/messages", restHandler.SendMessage)
	r.Put("/messages/:id", restHandler.EditMessage)
	r.Delete("/messages/:id", restHandler.DeleteMessage)
	r.Post("/messages/:id/star", restHandler.ToggleStar)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	serverAddr = ln.Addr().String()
	go func() {
		if err := r.Listener(ln); err != nil {
			log.Printf("fiber stopped: %v", err)
		}
	}()

	aliceToken, _ = token.GenerateJWT("alice", string(token.RoleMember), "chat-test")
	bobToken, _ = token.GenerateJWT("bob", string(token.RoleMember), "chat-test")

	// wait until the server accepts connections
	for i := 0; i < 50; i++ {
		conn, err := net.Dial("tcp", serverAddr)
		if err == nil {
			conn.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	code := m.Run()

	_ = r.Shutdown()
	mongo.Close(ctx)
	_ = mongoContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)

	os.Exit(code)
}

func restRequest(t *testing.T, method, path, authToken string, body interface{}, out interface{}) int {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	url := fmt.Sprintf("http://%s%s", serverAddr, path)
	if bytes.ContainsRune([]byte(path), '?') {
		url += "&auth=" + authToken
	} else {
		url += "?auth=" + authToken
	}
	req, err := http.NewRequest(method, url, reqBody)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func dialWS(t *testing.T, authToken string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?auth=%s", serverAddr, authToken), nil)
	assert.NoError(t, err)
	return conn
}

// waitForEvent reads frames until one carries the wanted event name
func waitForEvent(t *testing.T, conn *websocket.Conn, name string) domain.Event {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		var frame struct {
			Action  string `json:"action"`
			Payload struct {
				Event domain.Event `json:"event"`
			} `json:"payload"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read websocket frame: %v", err)
		}
		if frame.Action == name {
			return frame.Payload.Event
		}
	}
	t.Fatalf("no %s event before deadline", name)
	return domain.Event{}
}

func TestIntegration_DirectMessageFlow(t *testing.T) {
	var conv domain.Conversation
	status := restRequest(t, http.MethodPost, "/conversations/direct", aliceToken,
		map[string]string{"other_user_id": "bob"}, &conv)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.ConversationDirect, conv.Type)

	bobConn := dialWS(t, bobToken)
	defer bobConn.Close()
	// brief pause so the user room subscription is in place
	time.Sleep(300 * time.Millisecond)

	var sent domain.Message
	status = restRequest(t, http.MethodPost, "/conversations/"+conv.ID+"/messages", aliceToken,
		map[string]interface{}{"content": "hello bob"}, &sent)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello bob", sent.Content)

	ev := waitForEvent(t, bobConn, domain.EventNewMessage)
	assert.NotNil(t, ev.Message)
	assert.Equal(t, "hello bob", ev.Message.Content)
	assert.Equal(t, "alice", ev.Message.SenderID)

	// bob's directory shows the unread flag
	var convs []domain.Conversation
	status = restRequest(t, http.MethodGet, "/conversations", bobToken, nil, &convs)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, convs, 1)
	assert.Equal(t, 1, convs[0].Unread)

	// bob reads, alice's copy gains bob in read_by
	status = restRequest(t, http.MethodPost, "/conversations/"+conv.ID+"/read", bobToken, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var msgs []domain.Message
	status = restRequest(t, http.MethodGet, "/conversations/"+conv.ID+"/messages", aliceToken, nil, &msgs)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsReadBy("bob"))

	// the flag is gone on the next load
	status = restRequest(t, http.MethodGet, "/conversations", bobToken, nil, &convs)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, convs[0].Unread)
}

func TestIntegration_EditAndDelete(t *testing.T) {
	var conv domain.Conversation
	restRequest(t, http.MethodPost, "/conversations/direct", aliceToken,
		map[string]string{"other_user_id": "carol"}, &conv)

	var sent domain.Message
	restRequest(t, http.MethodPost, "/conversations/"+conv.ID+"/messages", aliceToken,
		map[string]interface{}{"content": "first draft"}, &sent)

	var edited domain.Message
	status := restRequest(t, http.MethodPut, "/messages/"+sent.ID, aliceToken,
		map[string]string{"content": "final version"}, &edited)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, edited.IsEdited)
	assert.Equal(t, "final version", edited.Content)

	// another user cannot edit alice's message
	status = restRequest(t, http.MethodPut, "/messages/"+sent.ID, bobToken,
		map[string]string{"content": "hijacked"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// delete for everyone blanks the stored copy
	status = restRequest(t, http.MethodDelete, "/messages/"+sent.ID+"?mode=everyone", aliceToken, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var msgs []domain.Message
	restRequest(t, http.MethodGet, "/conversations/"+conv.ID+"/messages", aliceToken, nil, &msgs)
	assert.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsDeleted)
	assert.Empty(t, msgs[0].Content)

	// a tombstone cannot be edited
	status = restRequest(t, http.MethodPut, "/messages/"+sent.ID, aliceToken,
		map[string]string{"content": "resurrect"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIntegration_DeleteForMeIsPersonal(t *testing.T) {
	var conv domain.Conversation
	restRequest(t, http.MethodPost, "/conversations/direct", aliceToken,
		map[string]string{"other_user_id": "dave"}, &conv)

	var sent domain.Message
	restRequest(t, http.MethodPost, "/conversations/"+conv.ID+"/messages", aliceToken,
		map[string]interface{}{"content": "for my eyes"}, &sent)

	status := restRequest(t, http.MethodDelete, "/messages/"+sent.ID+"?mode=me", aliceToken, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var msgs []domain.Message
	restRequest(t, http.MethodGet, "/conversations/"+conv.ID+"/messages", aliceToken, nil, &msgs)
	assert.Len(t, msgs, 1)
	assert.True(t, msgs[0].HiddenFor("alice"))
	assert.False(t, msgs[0].HiddenFor("dave"))
	assert.False(t, msgs[0].IsDeleted)
}

func TestIntegration_PinAndArchive(t *testing.T) {
	var conv domain.Conversation
	restRequest(t, http.MethodPost, "/conversations/direct", aliceToken,
		map[string]string{"other_user_id": "erin"}, &conv)

	status := restRequest(t, http.MethodPost, "/conversations/"+conv.ID+"/pin", aliceToken, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var convs []domain.Conversation
	restRequest(t, http.MethodGet, "/conversations", aliceToken, nil, &convs)
	var got *domain.Conversation
	for i := range convs {
		if convs[i].ID == conv.ID {
			got = &convs[i]
		}
	}
	if assert.NotNil(t, got) {
		assert.True(t, got.IsPinnedBy("alice"))
		assert.False(t, got.IsPinnedBy("erin"))
	}

	// toggling again removes the pin
	restRequest(t, http.MethodPost, "/conversations/"+conv.ID+"/pin", aliceToken, nil, nil)
	restRequest(t, http.MethodGet, "/conversations", aliceToken, nil, &convs)
	for i := range convs {
		if convs[i].ID == conv.ID {
			assert.False(t, convs[i].IsPinnedBy("alice"))
		}
	}
}

func TestIntegration_ConversationRoomFanout(t *testing.T) {
	var conv domain.Conversation
	restRequest(t, http.MethodPost, "/conversations/direct", aliceToken,
		map[string]string{"other_user_id": "bob"}, &conv)

	bobConn := dialWS(t, bobToken)
	defer bobConn.Close()

	// join the conversation room explicitly
	assert.NoError(t, bobConn.WriteJSON(domain.WSRequest{
		Action:         string(domain.JoinConversation),
		ConversationID: conv.ID,
	}))
	time.Sleep(300 * time.Millisecond)

	restRequest(t, http.MethodPost, "/conversations/"+conv.ID+"/messages", aliceToken,
		map[string]interface{}{"content": "room fanout"}, nil)

	ev := waitForEvent(t, bobConn, domain.EventNewMessage)
	assert.Equal(t, "room fanout", ev.Message.Content)
}
