package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acadhub/apms-go-api/internal/models"
)

// ChatRepository defines data operations for chat rooms and messages.
type ChatRepository interface {
	GetOrCreateRoom(ctx context.Context, studentID, facultyID uint) (models.ChatRoom, error)
	AppendMessage(ctx context.Context, roomID uint, message *models.ChatMessage) (models.ChatRoom, error)
	MarkRead(ctx context.Context, studentID, facultyID uint, reader models.ChatSender) error
	ListMessages(ctx context.Context, roomID uint, limit int) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository instantiates the repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) GetOrCreateRoom(ctx context.Context, studentID, facultyID uint) (models.ChatRoom, error) {
	room := models.ChatRoom{StudentID: studentID, FacultyID: facultyID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "faculty_id"}},
			DoNothing: true,
		}).
		Create(&room).Error; err != nil {
		return models.ChatRoom{}, err
	}

	var loaded models.ChatRoom
	if err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("student_id = ?", studentID).
		Where("faculty_id = ?", facultyID).
		First(&loaded).Error; err != nil {
		return models.ChatRoom{}, err
	}

	return loaded, nil
}

// AppendMessage stores the message and bumps the recipient's unread counter
// in the same transaction.
func (r *chatRepository) AppendMessage(ctx context.Context, roomID uint, message *models.ChatMessage) (models.ChatRoom, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		message.RoomID = roomID
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if message.Sender == models.SenderStudent {
			updates["unread_count_faculty"] = gorm.Expr("unread_count_faculty + 1")
			updates["unread_count_student"] = 0
		} else {
			updates["unread_count_student"] = gorm.Expr("unread_count_student + 1")
			updates["unread_count_faculty"] = 0
		}

		return tx.Model(&models.ChatRoom{}).Where("id = ?", roomID).Updates(updates).Error
	})
	if err != nil {
		return models.ChatRoom{}, err
	}

	var room models.ChatRoom
	if err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&room, roomID).Error; err != nil {
		return models.ChatRoom{}, err
	}

	return room, nil
}

func (r *chatRepository) MarkRead(ctx context.Context, studentID, facultyID uint, reader models.ChatSender) error {
	column := "unread_count_student"
	if reader == models.SenderFaculty {
		column = "unread_count_faculty"
	}

	result := r.db.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("student_id = ?", studentID).
		Where("faculty_id = ?", facultyID).
		Update(column, 0)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, roomID uint, limit int) ([]models.ChatMessage, error) {
	query := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}

	// Oldest first for display.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
