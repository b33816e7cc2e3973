package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/service"
)

type scriptedReply struct {
	err  error
	text string
}

type scriptedClient struct {
	replies  []scriptedReply
	requests []Request
}

func (c *scriptedClient) Generate(_ context.Context, req Request) (string, error) {
	c.requests = append(c.requests, req)
	if len(c.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r.text, r.err
}

func fastRetry() Config {
	return Config{Retry: service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}}
}

var statement = service.Document{
	Name:     "extracto.txt",
	MIMEType: "text/plain",
	Data:     []byte("25/10/2023 MERCADONA 55,20"),
}

func TestExtractor_Success(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{
		text: "```json\n[{\"date\":\"2023-10-25\",\"concept\":\"Mercadona\",\"amount\":55.20,\"category\":\"Supermercado\"}]\n```",
	}}}

	records, err := NewExtractor(client, fastRetry()).Extract(context.Background(), statement, []string{"Supermercado", "Otros"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Mercadona", records[0].Concept)
	assert.Equal(t, service.RawAmount("55.20"), records[0].Amount)

	require.Len(t, client.requests, 1)
	prompt := client.requests[0].Prompt
	assert.Contains(t, prompt, "Supermercado, Otros")
	assert.Contains(t, prompt, "MERCADONA 55,20")
	assert.Nil(t, client.requests[0].Attachment)
}

func TestExtractor_RetriesTransientFailures(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{err: statusError(http.StatusServiceUnavailable, "overloaded")},
		{err: errors.New("connection reset")},
		{text: "[]"},
	}}

	records, err := NewExtractor(client, fastRetry()).Extract(context.Background(), statement, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Len(t, client.requests, 3)
}

func TestExtractor_GivesUpAfterMaxAttempts(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{err: errors.New("503")},
		{err: errors.New("503")},
		{err: errors.New("503")},
		{text: "[]"},
	}}

	_, err := NewExtractor(client, fastRetry()).Extract(context.Background(), statement, nil)
	require.Error(t, err)

	var callErr *common.ExternalCallError
	require.ErrorAs(t, err, &callErr)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Len(t, client.requests, 3)
}

func TestExtractor_ClientErrorNotRetried(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{err: statusError(http.StatusBadRequest, "API key not valid")},
	}}

	_, err := NewExtractor(client, fastRetry()).Extract(context.Background(), statement, nil)
	var callErr *common.ExternalCallError
	require.ErrorAs(t, err, &callErr)
	assert.Contains(t, callErr.Error(), "API key not valid")
	assert.NotErrorIs(t, err, common.ErrMaxRetries)
	assert.Len(t, client.requests, 1)
}

func TestExtractor_MalformedReplyNotRetried(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{text: "Lo siento, no puedo ayudar."}}}

	_, err := NewExtractor(client, fastRetry()).Extract(context.Background(), statement, nil)
	var callErr *common.ExternalCallError
	require.ErrorAs(t, err, &callErr)
	assert.Len(t, client.requests, 1)
}

func TestExtractor_BinaryDocumentAttached(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{text: "[]"}}}
	pdf := service.Document{Name: "extracto.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-1.7\x00\x01")}

	_, err := NewExtractor(client, fastRetry()).Extract(context.Background(), pdf, []string{"Otros"})
	require.NoError(t, err)

	req := client.requests[0]
	require.NotNil(t, req.Attachment)
	assert.Equal(t, "application/pdf", req.Attachment.MIMEType)
	assert.NotContains(t, req.Prompt, "TEXTO A ANALIZAR")
}

func TestExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &scriptedClient{replies: []scriptedReply{{err: context.Canceled}, {text: "[]"}}}

	_, err := NewExtractor(client, fastRetry()).Extract(ctx, statement, nil)
	require.Error(t, err)
	assert.Len(t, client.requests, 1)
}

func TestNewExtractor_DefaultRetry(t *testing.T) {
	e := NewExtractor(&scriptedClient{}, Config{})
	assert.Equal(t, common.DefaultExtractionRetry(), e.retry)
	assert.Nil(t, e.limiter)
}

func TestStatusError(t *testing.T) {
	assert.ErrorIs(t, statusError(http.StatusTooManyRequests, "slow down"), common.ErrRateLimit)
	assert.True(t, common.IsRetryable(statusError(http.StatusBadGateway, "")))
	assert.False(t, common.IsRetryable(statusError(http.StatusUnauthorized, "")))
	assert.True(t, strings.Contains(statusError(http.StatusForbidden, "denied").Error(), "status 403"))
}
