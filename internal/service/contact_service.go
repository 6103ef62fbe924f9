package service

import (
	"context"
	"fmt"
	"time"

	"bouncehub/internal/model"
	"bouncehub/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateContactRequest struct {
	Name         string     `json:"name" binding:"required"`
	Email        string     `json:"email" binding:"required,email"`
	Phone        string     `json:"phone"`
	EventDate    *time.Time `json:"event_date"`
	EventAddress string     `json:"event_address"`
	PartySize    int        `json:"party_size" binding:"omitempty,min=0"`
	Message      string     `json:"message"`
	Source       string     `json:"source" binding:"omitempty,oneof=website phone referral"`
}

type UpdateContactRequest struct {
	Status       *string    `json:"status" binding:"omitempty,oneof=new contacted converted closed"`
	Phone        *string    `json:"phone"`
	EventDate    *time.Time `json:"event_date"`
	EventAddress *string    `json:"event_address"`
	Message      *string    `json:"message"`
}

type ContactListQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// --- Interface ---

type ContactService interface {
	CreateContact(ctx context.Context, req CreateContactRequest) (*model.Contact, error)
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	ListContacts(ctx context.Context, query ContactListQuery) ([]model.Contact, int64, error)
	UpdateContact(ctx context.Context, id string, req UpdateContactRequest) (*model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

type contactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) ContactService {
	return &contactService{contactRepo: contactRepo}
}

// --- Implementation ---

func (s *contactService) CreateContact(ctx context.Context, req CreateContactRequest) (*model.Contact, error) {
	source := req.Source
	if source == "" {
		source = "website"
	}

	contact := &model.Contact{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		EventDate:    req.EventDate,
		EventAddress: req.EventAddress,
		PartySize:    req.PartySize,
		Message:      req.Message,
		Source:       source,
		Status:       model.ContactNew,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid contact id: %w", err)
	}
	return s.contactRepo.FindByID(ctx, contactID)
}

func (s *contactService) ListContacts(ctx context.Context, query ContactListQuery) ([]model.Contact, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	return s.contactRepo.List(ctx, repository.ContactListFilter{
		Status: query.Status,
		Search: query.Search,
		Page:   query.Page,
		Limit:  query.Limit,
	})
}

func (s *contactService) UpdateContact(ctx context.Context, id string, req UpdateContactRequest) (*model.Contact, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid contact id: %w", err)
	}

	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("contact not found: %w", err)
	}

	if req.Status != nil {
		contact.Status = *req.Status
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.EventDate != nil {
		contact.EventDate = req.EventDate
	}
	if req.EventAddress != nil {
		contact.EventAddress = *req.EventAddress
	}
	if req.Message != nil {
		contact.Message = *req.Message
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) DeleteContact(ctx context.Context, id string) error {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid contact id: %w", err)
	}
	if _, err := s.contactRepo.FindByID(ctx, contactID); err != nil {
		return fmt.Errorf("contact not found: %w", err)
	}
	return s.contactRepo.Delete(ctx, contactID)
}
