package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "answer_with_context",
		Description: "Answer a question from the most relevant parts of a document",
		Arguments: []*mcp.PromptArgument{
			{Name: "document_id", Description: "id of an indexed document", Required: true},
			{Name: "question", Description: "the question to answer", Required: true},
		},
	}, s.handleAnswerPrompt)
}

func (s *Server) handleAnswerPrompt(
	ctx context.Context,
	req *mcp.GetPromptRequest,
) (*mcp.GetPromptResult, error) {
	documentID := req.Params.Arguments["document_id"]
	question := req.Params.Arguments["question"]
	if documentID == "" || question == "" {
		return nil, fmt.Errorf("%w: document_id and question are required", domain.ErrInvalidInput)
	}

	assembled, err := s.ports.Context.Assemble(ctx, documentID, question, domain.ContextOptions{
		IncludePrompt: true,
	})
	if err != nil {
		return nil, err
	}

	text := assembled.Prompt
	if text == "" {
		text = assembled.Formatted + "\n\nQuestion: " + question
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Context from %d chunks (%d tokens)",
			len(assembled.Window.Chunks), assembled.Window.TotalTokens),
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}, nil
}
