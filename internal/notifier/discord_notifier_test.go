package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"
)

func TestDiscordNotifier_SendNotification_PostsMultipartPayload(t *testing.T) {
	var (
		gotContentType string
		gotPayload     models.DiscordMessagePayload
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("payload_json")), &gotPayload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dn := NewDiscordNotifier(zerolog.Nop(), server.Client())
	payload := NewDiscordMessagePayloadBuilder().
		WithUsername("pagewatch").
		AddEmbed(NewDiscordEmbedBuilder().WithTitle("Change detected").Build()).
		Build()

	err := dn.SendNotification(context.Background(), server.URL, payload, nil)

	require.NoError(t, err)
	assert.Contains(t, gotContentType, "multipart/form-data")
	assert.Equal(t, "pagewatch", gotPayload.Username)
	require.Len(t, gotPayload.Embeds, 1)
	assert.Equal(t, "Change detected", gotPayload.Embeds[0].Title)
}

func TestDiscordNotifier_SendNotification_AttachesFile(t *testing.T) {
	var (
		attachmentName string
		attachmentBody []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file[0]")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		attachmentName = header.Filename
		attachmentBody, err = io.ReadAll(file)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dn := NewDiscordNotifier(zerolog.Nop(), server.Client())
	attachment := &Attachment{
		Filename: "shop-changes.txt",
		Content:  []byte(`~ title: "A" -> "B"`),
	}

	err := dn.SendNotification(context.Background(), server.URL, models.DiscordMessagePayload{Username: "pagewatch"}, attachment)

	require.NoError(t, err)
	assert.Equal(t, "shop-changes.txt", attachmentName)
	assert.Equal(t, []byte(`~ title: "A" -> "B"`), attachmentBody)
}

func TestDiscordNotifier_SendNotification_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	dn := NewDiscordNotifier(zerolog.Nop(), server.Client())

	err := dn.SendNotification(context.Background(), server.URL, models.DiscordMessagePayload{}, nil)

	require.Error(t, err)
	var httpErr *errorwrapper.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "rate limited")
}

func TestDiscordNotifier_SendNotification_EmptyURLSkips(t *testing.T) {
	dn := NewDiscordNotifier(zerolog.Nop(), nil)

	err := dn.SendNotification(context.Background(), "", models.DiscordMessagePayload{}, nil)

	require.NoError(t, err)
}

func TestDiscordNotifier_SendNotification_InvalidURL(t *testing.T) {
	dn := NewDiscordNotifier(zerolog.Nop(), nil)

	err := dn.SendNotification(context.Background(), "://not-a-url", models.DiscordMessagePayload{}, nil)

	require.Error(t, err)
}
