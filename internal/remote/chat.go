package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Chat is a conversation between a prospective tenant/buyer and the user
// who listed a property.
type Chat struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"propertyId"`
	Peer       string        `json:"peer"`
	Messages   []ChatMessage `json:"messages,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// ChatMessage is one message within a chat.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListChats fetches the current user's conversations.
func (c *Client) ListChats(ctx context.Context, token string) ([]Chat, error) {
	var res struct {
		Chats []Chat `json:"chats"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/chats", token, nil, &res); err != nil {
		return nil, err
	}
	return res.Chats, nil
}

// GetChat fetches one conversation with its messages.
func (c *Client) GetChat(ctx context.Context, token, id string) (*Chat, error) {
	var res struct {
		Chat Chat `json:"chat"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/chats/"+url.PathEscape(id), token, nil, &res); err != nil {
		return nil, err
	}
	return &res.Chat, nil
}

// CreateChat opens a conversation about a property.
func (c *Client) CreateChat(ctx context.Context, token, propertyID string) (*Chat, error) {
	var res struct {
		Chat Chat `json:"chat"`
	}
	body := map[string]string{"propertyId": propertyID}
	if err := c.doJSON(ctx, http.MethodPost, "/chats", token, body, &res); err != nil {
		return nil, err
	}
	return &res.Chat, nil
}

// SendMessage posts a message into a conversation.
func (c *Client) SendMessage(ctx context.Context, token, chatID, text string) (*ChatMessage, error) {
	var res struct {
		Message ChatMessage `json:"message"`
	}
	body := map[string]string{"text": text}
	if err := c.doJSON(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/messages", token, body, &res); err != nil {
		return nil, err
	}
	return &res.Message, nil
}

// MarkChatRead marks all messages in a conversation as read.
func (c *Client) MarkChatRead(ctx context.Context, token, chatID string) error {
	return c.doJSON(ctx, http.MethodPut, "/chats/"+url.PathEscape(chatID)+"/read", token, nil, nil)
}
