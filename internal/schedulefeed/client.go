package schedulefeed

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Максимальный размер входящего сообщения: клиент шлёт только
	// подписки и pong
	maxMessageSize = 1024
)

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	// Номера комнат, на которые подписан клиент
	Rooms map[int]bool

	Hub *Hub
	mu  sync.RWMutex
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
		Rooms:  make(map[int]bool),
		Hub:    hub,
	}
}

// ReadPump читает команды подписки от клиента
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var event Event
		if err := c.Conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("schedulefeed: read error: %v", err)
			}
			break
		}

		switch event.Type {
		case TypePong:
			c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		case TypeSubscribe:
			if event.RoomNumber > 0 {
				c.Hub.Subscribe(c, event.RoomNumber)
			}

		case TypeUnsubscribe:
			if event.RoomNumber > 0 {
				c.Hub.Unsubscribe(c, event.RoomNumber)
			}
		}
	}
}

// WritePump отправляет события клиенту
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	// Канал закрыт hub-ом
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
