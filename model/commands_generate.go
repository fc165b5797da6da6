package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"fabula/config"
)

// buildAPIMessages prepends the narrator system prompt and strips UI-only
// fields before handing the conversation to a provider. Image messages are
// skipped; their content is a reference, not prose the model should see.
func buildAPIMessages(uiMessages []Message, narratorPrompt string) []Message {
	var messages []Message

	if narratorPrompt != "" {
		messages = append(messages, Message{
			Role:    "system",
			Content: narratorPrompt,
		})
	}

	for _, msg := range uiMessages {
		if msg.Type == "image" {
			continue
		}
		if msg.Role == "user" || msg.Role == "assistant" {
			messages = append(messages, Message{
				Role:    msg.Role,
				Content: msg.Content,
			})
		}
	}

	return messages
}

// SendToNarrator streams the current conversation to the active provider
// and collects the response. Chunks are returned in one message and
// revealed progressively by the display tick, which keeps the Update loop
// free of provider callbacks.
func (m *Model) SendToNarrator() tea.Cmd {
	client := m.Provider
	narratorPrompt := m.NarratorPrompt()
	uiMessages := m.Messages

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		messages := buildAPIMessages(uiMessages, narratorPrompt)

		var chunks []string
		var responseBuilder strings.Builder
		startTime := time.Now()

		err := client.Stream(ctx, messages, func(chunk string) error {
			responseBuilder.WriteString(chunk)
			chunks = append(chunks, chunk)
			return nil
		})

		elapsed := time.Since(startTime)

		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("narrator error after %v: %v", elapsed, err)
			}
			return StreamErrorMsg{Err: err}
		}

		response := responseBuilder.String()
		if config.DebugLog != nil {
			config.DebugLog.Printf("narrator response after %v - %d chunks, %d chars", elapsed, len(chunks), len(response))
		}

		return StreamChunksCollectedMsg{
			Chunks:       chunks,
			FullResponse: response,
		}
	}
}

// GenerateSceneImage asks an image-capable provider to illustrate the
// prompt. Provider selection happens at wiring time; if no constructed
// provider advertises the image capability this command reports the error.
func (m *Model) GenerateSceneImage(prompt string) tea.Cmd {
	var client Provider
	if m.Picker != nil {
		if _, p, err := m.Picker.ForCapability(CapabilityImage); err == nil {
			client = p
		}
	} else {
		for _, p := range m.Providers {
			if HasCapability(p, CapabilityImage) {
				client = p
				break
			}
		}
	}

	return func() tea.Msg {
		if client == nil {
			return ImageGeneratedMsg{Prompt: prompt, Err: ErrNoImageProvider}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		ref, err := client.GenerateImage(ctx, prompt)
		return ImageGeneratedMsg{Prompt: prompt, Ref: ref, Err: err}
	}
}

// FetchModelList retrieves the list of available models from the active
// provider.
func (m *Model) FetchModelList(showSelector bool) tea.Cmd {
	client := m.Provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := client.ListModels(ctx)
		return ModelsListMsg{Models: models, Err: err, ShowSelector: showSelector}
	}
}
