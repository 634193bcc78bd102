package models

import "time"

// ChatRoom is the persistent conversation between one student and one faculty.
type ChatRoom struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	StudentID          uint          `gorm:"not null;uniqueIndex:idx_chat_rooms_pair" json:"student_id"`
	FacultyID          uint          `gorm:"not null;uniqueIndex:idx_chat_rooms_pair" json:"faculty_id"`
	UnreadCountStudent int           `gorm:"not null;default:0" json:"unread_count_student"`
	UnreadCountFaculty int           `gorm:"not null;default:0" json:"unread_count_faculty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	Messages           []ChatMessage `json:"messages"`
}

// ChatSender identifies which side of the room authored a message.
type ChatSender string

const (
	// SenderStudent marks a message written by the student.
	SenderStudent ChatSender = "student"
	// SenderFaculty marks a message written by the faculty.
	SenderFaculty ChatSender = "faculty"
)

// ChatMessage is a single message within a room.
type ChatMessage struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	RoomID    uint       `gorm:"not null;index" json:"room_id"`
	Sender    ChatSender `gorm:"size:16;not null" json:"sender"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}
