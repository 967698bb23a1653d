package dto

import (
	"time"

	"github.com/SmaylovSerikbay/locals-sub000/internal/geo"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Rating    float64 `json:"rating"`
}

// TaskDetails carries the task-only fields of an item
type TaskDetails struct {
	Price      *float64 `json:"price,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	ExecutorID *uint64  `json:"executor_id,omitempty"`
}

// EventDetails carries the event-only fields of an item
type EventDetails struct {
	EventDate           *time.Time `json:"event_date,omitempty"`
	MaxParticipants     int        `json:"max_participants"`
	RequiresApproval    bool       `json:"requires_approval"`
	CurrentParticipants int        `json:"current_participants"`
}

// ItemDTO represents an item in API responses. Exactly one of Task or Event
// is set, matching the item's type.
type ItemDTO struct {
	ID          string            `json:"id"`
	Type        models.ItemType   `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Status      models.ItemStatus `json:"status"`
	AuthorID    uint64            `json:"author_id"`
	Task        *TaskDetails      `json:"task,omitempty"`
	Event       *EventDetails     `json:"event,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Author      *UserDTO          `json:"author,omitempty"`
	Executor    *UserDTO          `json:"executor,omitempty"`
	Responses   []ResponseDTO     `json:"responses,omitempty"`
	Reviews     []ReviewDTO       `json:"reviews,omitempty"`
}

// NearbyItemDTO is an item annotated with its distance from the query point
type NearbyItemDTO struct {
	ItemDTO
	Distance float64 `json:"distance"`
}

// ResponseDTO represents a task response in API responses
type ResponseDTO struct {
	ID        string                `json:"id"`
	ItemID    string                `json:"item_id"`
	UserID    uint64                `json:"user_id"`
	Message   string                `json:"message"`
	Status    models.ResponseStatus `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	User      *UserDTO              `json:"user,omitempty"`
}

// ParticipantDTO represents an event participant in API responses
type ParticipantDTO struct {
	ID         string                   `json:"id"`
	ItemID     string                   `json:"item_id"`
	UserID     uint64                   `json:"user_id"`
	Status     models.ParticipantStatus `json:"status"`
	ApprovedAt *time.Time               `json:"approved_at,omitempty"`
	ApprovedBy *uint64                  `json:"approved_by,omitempty"`
	JoinedAt   time.Time                `json:"joined_at"`
	User       *UserDTO                 `json:"user,omitempty"`
}

// MessageDTO represents a chat message in API responses
type MessageDTO struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	SenderID  uint64    `json:"sender_id"`
	Text      string    `json:"text"`
	IsSystem  bool      `json:"is_system"`
	CreatedAt time.Time `json:"created_at"`
	Sender    *UserDTO  `json:"sender,omitempty"`
}

// ReviewDTO represents a review in API responses
type ReviewDTO struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	AuthorID  uint64    `json:"author_id"`
	TargetID  uint64    `json:"target_user_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Author    *UserDTO  `json:"author,omitempty"`
}

// ItemListResponse represents a paginated list of items
type ItemListResponse struct {
	Items      []ItemDTO                `json:"items"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Rating:    user.Rating,
	}
}

// ToItemDTO converts an Item model to ItemDTO
func ToItemDTO(item models.Item) ItemDTO {
	dto := ItemDTO{
		ID:          item.ID,
		Type:        item.Type,
		Title:       item.Title,
		Description: item.Description,
		Latitude:    item.Latitude,
		Longitude:   item.Longitude,
		Status:      item.Status,
		AuthorID:    item.AuthorID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}

	switch item.Type {
	case models.ItemTypeTask:
		dto.Task = &TaskDetails{
			Price:      item.Price,
			Currency:   item.Currency,
			ExecutorID: item.ExecutorID,
		}
	case models.ItemTypeEvent:
		dto.Event = &EventDetails{
			EventDate:           item.EventDate,
			MaxParticipants:     item.MaxParticipants,
			RequiresApproval:    item.RequiresApproval,
			CurrentParticipants: item.CurrentParticipants,
		}
	}

	if item.Author.ID != 0 {
		author := ToUserDTO(item.Author)
		dto.Author = &author
	}
	if item.Executor != nil && item.Executor.ID != 0 {
		executor := ToUserDTO(*item.Executor)
		dto.Executor = &executor
	}
	if len(item.Responses) > 0 {
		dto.Responses = make([]ResponseDTO, len(item.Responses))
		for i, r := range item.Responses {
			dto.Responses[i] = ToResponseDTO(r)
		}
	}
	if len(item.Reviews) > 0 {
		dto.Reviews = make([]ReviewDTO, len(item.Reviews))
		for i, r := range item.Reviews {
			dto.Reviews[i] = ToReviewDTO(r)
		}
	}

	return dto
}

// ToNearbyItemDTO converts a distance-annotated item
func ToNearbyItemDTO(item geo.ItemWithDistance) NearbyItemDTO {
	return NearbyItemDTO{
		ItemDTO:  ToItemDTO(item.Item),
		Distance: item.Distance,
	}
}

// ToResponseDTO converts a Response model to ResponseDTO
func ToResponseDTO(response models.Response) ResponseDTO {
	dto := ResponseDTO{
		ID:        response.ID,
		ItemID:    response.ItemID,
		UserID:    response.UserID,
		Message:   response.Message,
		Status:    response.Status,
		CreatedAt: response.CreatedAt,
		UpdatedAt: response.UpdatedAt,
	}
	if response.User.ID != 0 {
		user := ToUserDTO(response.User)
		dto.User = &user
	}
	return dto
}

// ToParticipantDTO converts a Participant model to ParticipantDTO
func ToParticipantDTO(participant models.Participant) ParticipantDTO {
	dto := ParticipantDTO{
		ID:         participant.ID,
		ItemID:     participant.ItemID,
		UserID:     participant.UserID,
		Status:     participant.Status,
		ApprovedAt: participant.ApprovedAt,
		ApprovedBy: participant.ApprovedBy,
		JoinedAt:   participant.JoinedAt,
	}
	if participant.User.ID != 0 {
		user := ToUserDTO(participant.User)
		dto.User = &user
	}
	return dto
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(message models.Message) MessageDTO {
	dto := MessageDTO{
		ID:        message.ID,
		ItemID:    message.ItemID,
		SenderID:  message.SenderID,
		Text:      message.Text,
		IsSystem:  message.IsSystem,
		CreatedAt: message.CreatedAt,
	}
	if message.Sender.ID != 0 {
		sender := ToUserDTO(message.Sender)
		dto.Sender = &sender
	}
	return dto
}

// ToReviewDTO converts a Review model to ReviewDTO
func ToReviewDTO(review models.Review) ReviewDTO {
	dto := ReviewDTO{
		ID:        review.ID,
		ItemID:    review.ItemID,
		AuthorID:  review.AuthorID,
		TargetID:  review.TargetID,
		Rating:    review.Rating,
		Text:      review.Text,
		CreatedAt: review.CreatedAt,
	}
	if review.Author.ID != 0 {
		author := ToUserDTO(review.Author)
		dto.Author = &author
	}
	return dto
}

// ToItemListResponse converts a slice of items to ItemListResponse
func ToItemListResponse(items []models.Item, page, limit int, total int64) ItemListResponse {
	out := make([]ItemDTO, len(items))
	for i, item := range items {
		out[i] = ToItemDTO(item)
	}
	return ItemListResponse{
		Items: out,
		Pagination: utils.PaginationResponse{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	}
}
