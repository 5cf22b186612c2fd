package discord_publisher

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const pngContentType = "image/png"

type publisherImpl struct {
	botSession   *discordgo.Session
	webhookID    string
	webhookToken string
	username     string
}

type Config struct {
	// WebhookURL has the form https://discord.com/api/webhooks/<id>/<token>.
	WebhookURL string
	Username   string
	// HTTPClient replaces the session's default client when set.
	HTTPClient *http.Client
}

func New(cfg Config) (Publisher, error) {
	if cfg.WebhookURL == "" {
		return nil, errors.New("missing webhook URL")
	}

	webhookID, webhookToken, err := ParseWebhookURL(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}

	// Webhooks authenticate with the token in the URL, so no bot token is needed.
	botSession, err := discordgo.New("")
	if err != nil {
		return nil, err
	}

	if cfg.HTTPClient != nil {
		botSession.Client = cfg.HTTPClient
	}

	return &publisherImpl{
		botSession:   botSession,
		webhookID:    webhookID,
		webhookToken: webhookToken,
		username:     cfg.Username,
	}, nil
}

// ParseWebhookURL returns the webhook ID and token from a Discord webhook URL.
func ParseWebhookURL(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return "", "", fmt.Errorf("invalid webhook URL scheme %q", u.Scheme)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	for i, part := range parts {
		if part != "webhooks" {
			continue
		}

		if len(parts) != i+3 || parts[i+1] == "" || parts[i+2] == "" {
			break
		}

		return parts[i+1], parts[i+2], nil
	}

	return "", "", fmt.Errorf("invalid webhook URL path %q", u.Path)
}

func (p *publisherImpl) Publish(sourcePath, fileName string, pngData []byte) error {
	if len(pngData) == 0 {
		return errors.New("missing png data")
	}

	if fileName == "" {
		fileName = filepath.Base(sourcePath) + ".png"
	}

	params := &discordgo.WebhookParams{
		Content:  fmt.Sprintf("Extracted from `%s`", filepath.Base(sourcePath)),
		Username: p.username,
		Files: []*discordgo.File{
			{
				Name:        filepath.Base(fileName),
				ContentType: pngContentType,
				Reader:      bytes.NewReader(pngData),
			},
		},
	}

	message, err := p.botSession.WebhookExecute(p.webhookID, p.webhookToken, true, params)
	if err != nil {
		return err
	}

	if message != nil {
		log.Printf("Posted %s to Discord webhook, message ID %s", fileName, message.ID)
	}

	return nil
}
