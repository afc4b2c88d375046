package allegro

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Thread is a buyer-seller message thread.
type Thread struct {
	ID           string    `json:"id"`
	Read         bool      `json:"read"`
	LastMessage  time.Time `json:"lastMessageDateTime"`
	Interlocutor struct {
		Login string `json:"login"`
	} `json:"interlocutor"`
}

// Message is a single message within a thread.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Author    struct {
		Login          string `json:"login"`
		IsInterlocutor bool   `json:"isInterlocutor"`
	} `json:"author"`
	RelatesTo struct {
		Offer struct {
			ID string `json:"id"`
		} `json:"offer"`
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	} `json:"relatesTo"`
}

// FetchThreads pages through the whole message-thread list.
func (c *Client) FetchThreads(ctx context.Context) ([]Thread, error) {
	const limit = 20

	var all []Thread
	for offset := 0; ; offset += limit {
		params := url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(limit)},
		}
		var page struct {
			Threads []Thread `json:"threads"`
		}
		if err := c.get(ctx, "threads", "/messaging/threads", params, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Threads...)
		if len(page.Threads) < limit {
			return all, nil
		}
	}
}

// FetchThreadMessages returns up to limit (max 20) messages of a thread,
// newest first.
func (c *Client) FetchThreadMessages(ctx context.Context, threadID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 20 {
		limit = 20
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}

	var page struct {
		Messages []Message `json:"messages"`
	}
	err := c.get(ctx, "thread_messages", "/messaging/threads/"+threadID+"/messages", params, &page)
	if err != nil {
		return nil, err
	}
	return page.Messages, nil
}

// SendThreadMessage posts a reply into a thread and returns the created
// message.
func (c *Client) SendThreadMessage(ctx context.Context, threadID, text string) (*Message, error) {
	body := map[string]any{
		"text": text,
		"attachments": []any{},
	}
	var created Message
	err := c.post(ctx, "send_thread_message", "/messaging/threads/"+threadID+"/messages", body, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Issue is an after-sale discussion (dispute) with a buyer.
type Issue struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Subject struct {
		Name string `json:"name"`
	} `json:"subject"`
	Buyer struct {
		Login string `json:"login"`
	} `json:"buyer"`
	CreatedAt time.Time `json:"createdAt"`
}

// FetchDiscussions pages through ongoing disputes.
func (c *Client) FetchDiscussions(ctx context.Context) ([]Issue, error) {
	const limit = 100

	var all []Issue
	for offset := 0; ; offset += limit {
		params := url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(limit)},
			"status": {"DISPUTE_ONGOING"},
		}
		var page struct {
			Issues []Issue `json:"issues"`
		}
		if err := c.get(ctx, "discussions", "/sale/issues", params, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Issues...)
		if len(page.Issues) < limit {
			return all, nil
		}
	}
}

// FetchDiscussionChat returns the chat log of a dispute.
func (c *Client) FetchDiscussionChat(ctx context.Context, issueID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}

	var page struct {
		Messages []Message `json:"messages"`
	}
	err := c.get(ctx, "discussion_chat", "/sale/issues/"+issueID+"/chat", params, &page)
	if err != nil {
		return nil, err
	}
	return page.Messages, nil
}

// SendDiscussionMessage posts a seller message into a dispute.
func (c *Client) SendDiscussionMessage(ctx context.Context, issueID, text string) error {
	body := map[string]any{"text": text}
	return c.post(ctx, "send_discussion_message", "/sale/issues/"+issueID+"/message", body, nil)
}
