package apiclient

import (
	"context"
	"net/http"

	"github.com/hongminglow/fincontrol-be/internal/advisor"
	"github.com/hongminglow/fincontrol-be/internal/client"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
)

// Advise asks the server-side advisor. It mirrors the advisor's messages:
// empty input skips the call and any failure yields the failure message.
func (c *Client) Advise(ctx context.Context, expenses []models.Expense) string {
	if len(expenses) == 0 {
		return advisor.EmptyMessage
	}
	var out dto.AdviceResponse
	if err := c.do(ctx, http.MethodPost, "/api/advice", dto.AdviceRequest{Expenses: expenses}, &out); err != nil {
		c.log.Warnw("advice request failed", "error", err)
		return advisor.FailureMessage
	}
	if out.Advice == "" {
		return advisor.NoAnalysisMessage
	}
	return out.Advice
}

var _ client.Advisor = (*Client)(nil)
