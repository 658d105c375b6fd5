package domain

import "time"

type TicketMessage struct {
	ID         int64     `json:"id"`
	Ticket     int64     `json:"ticket"`
	Sender     int64     `json:"sender"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

type SupportTicket struct {
	ID           int64           `json:"id"`
	TicketNumber string          `json:"ticket_number"`
	Subject      string          `json:"subject"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Priority     string          `json:"priority"`
	Status       string          `json:"status"`
	AssignedTo   *int64          `json:"assigned_to"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ResolvedAt   *time.Time      `json:"resolved_at"`
	Messages     []TicketMessage `json:"messages"`
}

// TicketInput carries the fields of a create or partial update.
type TicketInput struct {
	Subject     *string `json:"subject,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type FAQ struct {
	ID          int64     `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Category    string    `json:"category"`
	IsPublished bool      `json:"is_published"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductReview struct {
	ID                 int64     `json:"id"`
	Product            int64     `json:"product"`
	Customer           int64     `json:"customer"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title"`
	Review             string    `json:"review"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	IsApproved         bool      `json:"is_approved"`
	HelpfulVotes       int       `json:"helpful_votes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ReviewInput struct {
	Product int64  `json:"product"`
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Review  string `json:"review"`
}
