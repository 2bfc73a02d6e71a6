package schedulefeed

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий фида расписания.
type EventType string

const (
	// Системные типы
	TypePing EventType = "ping"
	TypePong EventType = "pong"

	// Подписка на расписание комнаты
	TypeSubscribe   EventType = "subscribe"
	TypeUnsubscribe EventType = "unsubscribe"

	// События жизненного цикла брони
	TypeReservationCreated   EventType = "reservation_created"
	TypeReservationCancelled EventType = "reservation_cancelled"
	TypeReservationEnded     EventType = "reservation_ended"
)

// Event — сообщение фида. RoomNumber заполнен для событий броней
// и подписок, для ping/pong равен нулю.
type Event struct {
	Type       EventType       `json:"type"`
	RoomNumber int             `json:"room_number,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Hub раздаёт события броней подписчикам расписаний комнат.
// Владеет всеми соединениями, управление через каналы.
type Hub struct {
	clients map[uuid.UUID]*Client

	// Подписчики по номеру комнаты
	rooms map[int]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	events     chan *Event

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		rooms:      make(map[int]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *Event, 64),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run запускает hub
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.events:
			h.broadcastEvent(event)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub и закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		client.Conn.Close()
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish ставит событие брони в очередь рассылки. Вызывается из
// HTTP-обработчиков после успешного коммита; фид best-effort.
func (h *Hub) Publish(eventType EventType, roomNumber int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("schedulefeed: marshal %s payload: %v", eventType, err)
		return
	}

	event := &Event{
		Type:       eventType,
		RoomNumber: roomNumber,
		Data:       data,
		Timestamp:  time.Now(),
	}

	select {
	case h.events <- event:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	log.Printf("schedulefeed: client %s connected (user %s)", client.ID, client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for roomNumber := range client.Rooms {
		h.removeFromRoomUnsafe(client, roomNumber)
	}

	delete(h.clients, client.ID)
	close(client.Send)

	log.Printf("schedulefeed: client %s disconnected", client.ID)
}

// Subscribe подписывает клиента на расписание комнаты
func (h *Hub) Subscribe(client *Client, roomNumber int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomNumber]; !ok {
		h.rooms[roomNumber] = make(map[uuid.UUID]*Client)
	}
	h.rooms[roomNumber][client.ID] = client

	client.mu.Lock()
	client.Rooms[roomNumber] = true
	client.mu.Unlock()
}

// Unsubscribe снимает подписку клиента с комнаты
func (h *Hub) Unsubscribe(client *Client, roomNumber int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, roomNumber)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomNumber int) {
	room, ok := h.rooms[roomNumber]
	if !ok {
		return
	}

	delete(room, client.ID)
	if len(room) == 0 {
		delete(h.rooms, roomNumber)
	}

	client.mu.Lock()
	delete(client.Rooms, roomNumber)
	client.mu.Unlock()
}

func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("schedulefeed: marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[event.RoomNumber] {
		select {
		case client.Send <- data:
		default:
			log.Printf("schedulefeed: client %s send queue full, event dropped", client.ID)
		}
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event := Event{Type: TypePing, Timestamp: time.Now()}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// Watchers возвращает количество подписчиков расписания комнаты
func (h *Hub) Watchers(roomNumber int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomNumber])
}
