package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/observability"
	"github.com/acadhub/apms-go-api/internal/repository"
)

const (
	chatRedisTTL       = 30 * time.Minute
	chatSendBufferSize = 32
	chatHistoryLimit   = 100
)

// ErrChatNotAuthorised indicates the caller tried to post into a room they
// are not a member of, or to impersonate the other side.
var ErrChatNotAuthorised = errors.New("sender not authorised for room")

// ErrEmptyMessage indicates the message carried no content after sanitization.
var ErrEmptyMessage = errors.New("message content empty after sanitization")

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	StudentID     uint
	FacultyID     uint
	Role          string
	CorrelationID string
	Context       context.Context
}

// ChatService manages the student-faculty conversations, both over REST and
// live websocket connections.
type ChatService interface {
	Room(ctx context.Context, studentID, facultyID uint) (dto.ChatRoomResponse, error)
	Send(ctx context.Context, studentID, facultyID uint, payload dto.ChatSendRequest) (dto.ChatMessageResponse, error)
	MarkRead(ctx context.Context, studentID, facultyID uint, payload dto.ChatReadRequest) error
	History(ctx context.Context, studentID, facultyID uint, limit int) ([]dto.ChatMessageResponse, error)
	ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions)
	Start(ctx context.Context)
}

type chatService struct {
	repo        repository.ChatRepository
	redis       *redis.Client
	redisStream string
	redisCache  string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *chatHub
	nodeID      string
}

// chatHub keeps track of active websocket clients per room.
type chatHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*chatClient]struct{}
	log   zerolog.Logger
}

type chatClient struct {
	conn    *websocket.Conn
	send    chan dto.ChatMessageResponse
	options ChatConnectionOptions
	roomID  uint
	service *chatService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type chatEvent struct {
	Source  string                  `json:"source"`
	Message dto.ChatMessageResponse `json:"message"`
	SentAt  time.Time               `json:"sent_at"`
}

// NewChatService creates the chat service.
func NewChatService(repo repository.ChatRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) ChatService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	hub := &chatHub{
		rooms: make(map[uint]map[*chatClient]struct{}),
		log:   logger.With().Str("component", "chat_hub").Logger(),
	}

	streamChannel := ""
	cachePrefix := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":chat"
		cachePrefix = channelBase + ":chat:last"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".chat"
	}

	return &chatService{
		repo:        repo,
		redis:       redisClient,
		redisStream: streamChannel,
		redisCache:  cachePrefix,
		nats:        natsConn,
		natsSubject: natsSubject,
		validator:   validate,
		logger:      logger.With().Str("component", "chat_service").Logger(),
		tracer:      otel.Tracer("github.com/acadhub/apms-go-api/internal/service/chat"),
		sanitizer:   sanitizer,
		hub:         hub,
		nodeID:      uuid.NewString(),
	}
}

func (s *chatService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *chatService) Room(ctx context.Context, studentID, facultyID uint) (dto.ChatRoomResponse, error) {
	room, err := s.repo.GetOrCreateRoom(ctx, studentID, facultyID)
	if err != nil {
		return dto.ChatRoomResponse{}, err
	}

	return dto.NewChatRoomResponse(room), nil
}

func (s *chatService) Send(ctx context.Context, studentID, facultyID uint, payload dto.ChatSendRequest) (dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.ChatMessageResponse{}, ErrEmptyMessage
	}

	room, err := s.repo.GetOrCreateRoom(ctx, studentID, facultyID)
	if err != nil {
		return dto.ChatMessageResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "chat.broadcast", trace.WithAttributes(
		attribute.Int64("chat.room_id", int64(room.ID)),
		attribute.String("chat.sender", payload.Sender),
	))
	defer span.End()

	message := models.ChatMessage{
		RoomID:  room.ID,
		Sender:  models.ChatSender(payload.Sender),
		Content: clean,
	}

	if _, err := s.repo.AppendMessage(spanCtx, room.ID, &message); err != nil {
		span.RecordError(err)
		return dto.ChatMessageResponse{}, err
	}

	response := dto.NewChatMessageResponse(message)
	s.cacheLastMessage(spanCtx, response)
	s.hub.broadcast(room.ID, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish chat event")
	}

	observability.ChatMessagesSent().WithLabelValues(payload.Sender).Inc()

	return response, nil
}

func (s *chatService) MarkRead(ctx context.Context, studentID, facultyID uint, payload dto.ChatReadRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	return s.repo.MarkRead(ctx, studentID, facultyID, models.ChatSender(payload.Reader))
}

func (s *chatService) History(ctx context.Context, studentID, facultyID uint, limit int) ([]dto.ChatMessageResponse, error) {
	if limit <= 0 || limit > chatHistoryLimit {
		limit = chatHistoryLimit
	}

	room, err := s.repo.GetOrCreateRoom(ctx, studentID, facultyID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, room.ID, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewChatMessageResponseSlice(messages), nil
}

func (s *chatService) ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	room, err := s.repo.GetOrCreateRoom(baseCtx, opts.StudentID, opts.FacultyID)
	if err != nil {
		s.logger.Warn().Err(err).
			Uint("student_id", opts.StudentID).
			Uint("faculty_id", opts.FacultyID).
			Msg("failed to resolve chat room for connection")
		_ = conn.Close()
		return
	}

	client := &chatClient{
		conn:    conn,
		send:    make(chan dto.ChatMessageResponse, chatSendBufferSize),
		options: opts,
		roomID:  room.ID,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.ChatConnectionsTotal().Inc()

	if last := s.fetchLastMessage(baseCtx, room.ID); last != nil {
		select {
		case client.send <- *last:
		default:
		}
	}

	go client.writer()
	client.reader()
}

// authorise ensures websocket senders cannot impersonate the other side of
// the room. Admins may post as either side.
func (s *chatService) authorise(client *chatClient, sender string) error {
	role := strings.ToLower(client.options.Role)
	if role == RoleAdmin {
		return nil
	}
	if role != sender {
		return ErrChatNotAuthorised
	}
	return nil
}

func (s *chatService) cacheLastMessage(ctx context.Context, message dto.ChatMessageResponse) {
	if s.redis == nil || s.redisCache == "" {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal chat message for cache")
		return
	}

	key := fmt.Sprintf("%s:%d", s.redisCache, message.RoomID)
	if err := s.redis.Set(ctx, key, payload, chatRedisTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache chat message")
	}
}

func (s *chatService) fetchLastMessage(ctx context.Context, roomID uint) *dto.ChatMessageResponse {
	if s.redis == nil || s.redisCache == "" {
		return nil
	}

	key := fmt.Sprintf("%s:%d", s.redisCache, roomID)
	result, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var message dto.ChatMessageResponse
	if err := json.Unmarshal([]byte(result), &message); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached chat message")
		return nil
	}

	return &message
}

func (s *chatService) publish(ctx context.Context, message dto.ChatMessageResponse) error {
	event := chatEvent{
		Source:  s.nodeID,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *chatService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("chat redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *chatService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "apms-chat", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats chat subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain chat nats subscription")
		}
	}()
}

func (s *chatService) handleEvent(data []byte) {
	var event chatEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid chat event")
		return
	}

	// Own events were already delivered locally.
	if event.Source == s.nodeID {
		return
	}

	s.hub.broadcast(event.Message.RoomID, event.Message)
}

func (h *chatHub) register(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rooms[client.roomID]; !exists {
		h.rooms[client.roomID] = make(map[*chatClient]struct{})
	}
	h.rooms[client.roomID][client] = struct{}{}
	h.log.Debug().Uint("room_id", client.roomID).Str("role", client.options.Role).Msg("chat client connected")
}

func (h *chatHub) unregister(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[client.roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, client.roomID)
		}
	}
	h.log.Debug().Uint("room_id", client.roomID).Str("role", client.options.Role).Msg("chat client disconnected")
}

func (h *chatHub) broadcast(roomID uint, message dto.ChatMessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Uint("room_id", roomID).Msg("dropping chat message for slow client")
		}
	}
}

func (c *chatClient) reader() {
	defer c.close()

	for {
		var payload dto.ChatSendRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("chat read loop ended")
			return
		}

		if err := c.service.authorise(c, payload.Sender); err != nil {
			c.service.logger.Warn().Err(err).Uint("room_id", c.roomID).Msg("rejected chat message")
			continue
		}

		if _, err := c.service.Send(c.baseCtx, c.options.StudentID, c.options.FacultyID, payload); err != nil {
			c.service.logger.Warn().Err(err).Msg("failed to process chat message")
		}
	}
}

func (c *chatClient) writer() {
	defer c.close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *chatClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
