package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"threadpack/internal/retrieval"

	openai "github.com/sashabaranov/go-openai"
)

const (
	maxRecords  = 30
	postRunes   = 600
	commentRune = 200
	maxComments = 3
)

// Summarizer defines the AI summary interface used by commands.
type Summarizer interface {
	// SummarizeEvidence answers the query from the evidence pack alone, citing thread ids.
	SummarizeEvidence(ctx context.Context, query string, records []retrieval.EvidenceRecord, language string) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model must be specified")
	}
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	return &OpenAIClient{client: c, model: cfg.Model}, nil
}

func (o *OpenAIClient) SummarizeEvidence(ctx context.Context, query string, records []retrieval.EvidenceRecord, language string) (string, error) {
	// set timeout to 300s for pack-level summary
	ctx, cancel := context.WithTimeout(ctx, 300*time.Second)
	defer cancel()
	if len(records) == 0 {
		return "", nil
	}
	out, err := o.create(ctx, systemPrompt(language), userPrompt(query, records))
	if err != nil {
		slog.Error("openai: summarize evidence error", "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func systemPrompt(language string) string {
	return fmt.Sprintf(`
		You answer questions about practitioner discussion threads, write in %s.
		Use ONLY the evidence pack below. Do not add facts that are not in it.
		Cite every claim with the thread id in square brackets, e.g. [thread_123].
		If the evidence does not answer the question, say so plainly.
		`, langOrDefault(language))
}

func userPrompt(query string, records []retrieval.EvidenceRecord) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Question: %s\n\nEvidence pack:\n", query)
	for i, r := range records {
		if i >= maxRecords {
			break
		}
		fmt.Fprintf(b, "\n[%s] engagement=%d\n%s\n", r.ThreadID, r.Metrics.Engagement(), clip(r.PostText, postRunes))
		for j, c := range r.CommentsText {
			if j >= maxComments {
				break
			}
			fmt.Fprintf(b, "  > %s\n", clip(c, commentRune))
		}
	}
	b.WriteString("\nTask: Summarize what the threads say about the question. Plain text, a few short paragraphs, cite thread ids.")
	return b.String()
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) > n {
		return string([]rune(s)[:n]) + "..."
	}
	return s
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
