package handler

import (
	"testing"
	"time"

	"washtrack-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTicketResponse_ResolvedFlag(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	open := domain.ServiceTicket{ID: 1, BranchID: 2, Title: "pump leak", Status: domain.TicketOpen, CreatedAt: now}
	resp := ticketResponse(&open)
	assert.Equal(t, false, resp["resolved"])
	assert.NotContains(t, resp, "resolvedAt")

	fixed := open
	fixed.Status = domain.TicketFixed
	fixed.ResolvedAt = &now
	resp = ticketResponse(&fixed)
	assert.Equal(t, true, resp["resolved"])
	assert.Equal(t, now.Format(time.RFC3339), resp["resolvedAt"])

	// a reopened ticket keeps its last resolution timestamp but reports
	// itself unresolved
	reopened := fixed
	reopened.Status = domain.TicketOpen
	resp = ticketResponse(&reopened)
	assert.Equal(t, false, resp["resolved"])
	assert.Equal(t, now.Format(time.RFC3339), resp["resolvedAt"])
}
