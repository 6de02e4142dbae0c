package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/voicebill/internal/llm"
)

type chatRequest struct {
	Model          string  `json:"model"`
	Temperature    float32 `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestClient_Complete(t *testing.T) {
	var got chatRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"client\":\"Max\"}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer ts.Close()

	client := llm.New(llm.Config{APIKey: "test", BaseURL: ts.URL + "/v1", Temperature: 0.1})

	content, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "extract"},
		{Role: llm.RoleUser, Content: "Drei Massagen"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"client":"Max"}`, content)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Drei Massagen", got.Messages[1].Content)
}

func TestClient_Complete_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	}))
	defer ts.Close()

	client := llm.New(llm.Config{APIKey: "test", BaseURL: ts.URL + "/v1"})

	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestClient_Complete_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	}))
	defer ts.Close()

	client := llm.New(llm.Config{APIKey: "test", BaseURL: ts.URL + "/v1"})

	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	assert.Error(t, err)
}

func TestClient_Transcribe(t *testing.T) {
	var language, filename string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		language = r.FormValue("language")

		if _, header, err := r.FormFile("file"); err == nil {
			filename = header.Filename
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "Drei Massagen à 80 Euro für Max Mustermann"}`))
	}))
	defer ts.Close()

	client := llm.New(llm.Config{APIKey: "test", BaseURL: ts.URL + "/v1"})

	text, err := client.Transcribe(context.Background(), []byte("fake audio"), "memo.webm", "de")
	require.NoError(t, err)
	assert.Equal(t, "Drei Massagen à 80 Euro für Max Mustermann", text)
	assert.Equal(t, "de", language)
	assert.Equal(t, "memo.webm", filename)
}

func TestClient_Transcribe_EmptyAudio(t *testing.T) {
	client := llm.New(llm.Config{APIKey: "test"})

	_, err := client.Transcribe(context.Background(), nil, "memo.webm", "de")
	assert.Error(t, err)
}
