package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	taken, err := s.emailTaken(ctx, u.Email, 0)
	if err != nil {
		return err
	}
	if taken {
		return cnst.ErrEmailTaken
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetUser(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	var out []*User
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *Store) ListActiveUsers(ctx context.Context) ([]*User, error) {
	var out []*User
	err := s.db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&out).Error
	return out, err
}

func (s *Store) UpdateUser(ctx context.Context, u *User) error {
	taken, err := s.emailTaken(ctx, u.Email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return cnst.ErrEmailTaken
	}
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", u.ID).
		Select("name", "email", "password_hash", "permission_level", "active").
		Updates(map[string]any{
			"name":             u.Name,
			"email":            u.Email,
			"password_hash":    u.PasswordHash,
			"permission_level": u.PermissionLevel,
			"active":           u.Active,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

// emailTaken reports whether another user already holds the email
func (s *Store) emailTaken(ctx context.Context, email string, selfID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ? AND id <> ?", email, selfID).
		Count(&count).Error
	return count > 0, err
}

// --- Activity log ---

func (s *Store) AppendActivity(ctx context.Context, e *ActivityLog) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *Store) ListActivity(ctx context.Context, limit int) ([]*ActivityLog, error) {
	var out []*ActivityLog
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) ListActivityByUser(ctx context.Context, userID uint, limit int) ([]*ActivityLog, error) {
	var out []*ActivityLog
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// --- Notifications ---

func (s *Store) CreateNotification(ctx context.Context, n *Notification) error {
	if n.Status == "" {
		n.Status = cnst.NotificationUnread
	}
	return s.db.WithContext(ctx).Create(n).Error
}

// CreateNotificationIfAbsent relies on the unique index on dedup_key: the
// conditional insert is atomic in the store, so concurrent scans cannot
// produce duplicate unread alerts.
func (s *Store) CreateNotificationIfAbsent(ctx context.Context, n *Notification) (bool, error) {
	if n.Status == "" {
		n.Status = cnst.NotificationUnread
	}
	if n.DedupKey == nil && n.EntityID != nil {
		key := DedupKey(n.EntityKind, *n.EntityID, n.UserID)
		n.DedupKey = &key
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DedupKey builds the unique key guarding one unread alert per
// (entity kind, entity id, user) triple.
func DedupKey(entityKind cnst.EntityKind, entityID, userID uint) string {
	return fmt.Sprintf("%s:%d:%d", entityKind, entityID, userID)
}

func (s *Store) NotifyActiveUsers(ctx context.Context, n *Notification) error {
	users, err := s.ListActiveUsers(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			row := *n
			row.ID = 0
			row.UserID = u.ID
			if row.Status == "" {
				row.Status = cnst.NotificationUnread
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetNotification(ctx context.Context, id uint) (*Notification, error) {
	var n Notification
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]*Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("status = ?", cnst.NotificationUnread)
	}
	var out []*Notification
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// MarkNotificationRead transitions unread to read and releases the dedup slot
func (s *Store) MarkNotificationRead(ctx context.Context, id uint) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND status = ?", id, cnst.NotificationUnread).
		Updates(map[string]any{
			"status":    cnst.NotificationRead,
			"read_at":   now,
			"dedup_key": nil,
		})
	return res.RowsAffected > 0, res.Error
}

// ArchiveNotification archives the notification from any state
func (s *Store) ArchiveNotification(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    cnst.NotificationArchived,
			"dedup_key": nil,
		})
	return res.RowsAffected > 0, res.Error
}
