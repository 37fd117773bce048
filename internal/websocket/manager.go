// Package websocket pushes vault-change notifications to an account's
// live sessions so open clients can refresh their credential list.
// Events carry record ids and site names only, never secret material.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

type Manager struct {
	clients      map[string]*Client
	userIndex    map[string]map[string]bool
	clientsMutex sync.RWMutex

	Register   chan *Client
	Unregister chan *Client
	Inbound    chan *ClientMessage

	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
}

type ClientMessage struct {
	Client  *Client
	Message []byte
}

func NewManager(maxConnPerUser int, writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		Inbound:        make(chan *ClientMessage),
		maxConnPerUser: maxConnPerUser,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.Inbound:
			m.handleInbound(clientMsg)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]bool)
	}

	if len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		log.Printf("max connections reached for user %s", client.UserID)
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = true

	log.Printf("session stream connected: %s (user: %s)", client.ID, client.UserID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.userIndex[client.UserID], client.ID)

		if len(m.userIndex[client.UserID]) == 0 {
			delete(m.userIndex, client.UserID)
		}

		close(client.Send)
		log.Printf("session stream disconnected: %s", client.ID)
	}
}

// handleInbound answers pings; the event stream is otherwise one-way.
func (m *Manager) handleInbound(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		log.Printf("error unmarshaling client message: %v", err)
		return
	}

	if msg.Type == TypePing {
		pong, err := NewMessage(TypePong, nil)
		if err != nil {
			return
		}
		pongBytes, _ := json.Marshal(pong)
		select {
		case clientMsg.Client.Send <- pongBytes:
		default:
		}
	}
}

// BroadcastToUser delivers a message to every live session of one user.
func (m *Manager) BroadcastToUser(userID string, message *Message) {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("error marshaling broadcast message: %v", err)
		return
	}

	clientIDs, exists := m.userIndex[userID]
	if !exists {
		return
	}

	for clientID := range clientIDs {
		client := m.clients[clientID]
		select {
		case client.Send <- messageBytes:
		default:
			log.Printf("client %s send buffer full, dropping connection", clientID)
			go func(c *Client) { m.Unregister <- c }(client)
		}
	}
}

// CredentialChanged implements service.VaultNotifier.
func (m *Manager) CredentialChanged(ownerID, credentialID, siteName string) {
	msg, err := NewMessage(TypeCredentialUpdate, &CredentialUpdatePayload{
		CredentialID: credentialID,
		SiteName:     siteName,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		return
	}
	m.BroadcastToUser(ownerID, msg)
}

// CredentialDeleted implements service.VaultNotifier.
func (m *Manager) CredentialDeleted(ownerID, credentialID string) {
	msg, err := NewMessage(TypeCredentialDelete, &CredentialDeletePayload{
		CredentialID: credentialID,
	})
	if err != nil {
		return
	}
	m.BroadcastToUser(ownerID, msg)
}

// UserConnections reports the live session count for a user.
func (m *Manager) UserConnections(userID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if clients, exists := m.userIndex[userID]; exists {
		return len(clients)
	}
	return 0
}
