package dto

import (
	"time"

	"github.com/acadhub/apms-go-api/internal/models"
)

// ChatSendRequest posts a message into a student-faculty room.
type ChatSendRequest struct {
	Sender  string `json:"sender" validate:"required,oneof=student faculty"`
	Content string `json:"content" validate:"required,min=1"`
}

// ChatReadRequest clears the unread counter for one side of the room.
type ChatReadRequest struct {
	Reader string `json:"reader" validate:"required,oneof=student faculty"`
}

// ChatMessageResponse serializes one message.
type ChatMessageResponse struct {
	ID        uint      `json:"id"`
	RoomID    uint      `json:"room_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRoomResponse serializes a room together with its messages.
type ChatRoomResponse struct {
	ID                 uint                  `json:"id"`
	StudentID          uint                  `json:"student_id"`
	FacultyID          uint                  `json:"faculty_id"`
	UnreadCountStudent int                   `json:"unread_count_student"`
	UnreadCountFaculty int                   `json:"unread_count_faculty"`
	Messages           []ChatMessageResponse `json:"messages"`
}

// NewChatMessageResponse converts a ChatMessage model into a DTO.
func NewChatMessageResponse(model models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        model.ID,
		RoomID:    model.RoomID,
		Sender:    string(model.Sender),
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}

// NewChatMessageResponseSlice converts message models into DTOs.
func NewChatMessageResponseSlice(messages []models.ChatMessage) []ChatMessageResponse {
	responses := make([]ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewChatMessageResponse(message))
	}
	return responses
}

// NewChatRoomResponse converts a ChatRoom model into a DTO.
func NewChatRoomResponse(model models.ChatRoom) ChatRoomResponse {
	return ChatRoomResponse{
		ID:                 model.ID,
		StudentID:          model.StudentID,
		FacultyID:          model.FacultyID,
		UnreadCountStudent: model.UnreadCountStudent,
		UnreadCountFaculty: model.UnreadCountFaculty,
		Messages:           NewChatMessageResponseSlice(model.Messages),
	}
}
