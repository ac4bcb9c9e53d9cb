package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCommentForbidden = errors.New("comment can only be deleted by its author or an admin")
	ErrCommentEmpty     = errors.New("comment content is required")
	ErrCommentFailed    = errors.New("comment could not be saved")
)

const commentModule = "comments"

// CommentService 管理文章评论。评论没有种子数据，回退结果为空列表。
type CommentService struct {
	db   *gorm.DB
	mode *BackendMode
	now  func() time.Time
}

// CommentInput 是发表评论所需的字段，用户信息来自登录会话。
type CommentInput struct {
	PostID     string
	UserID     string
	UserName   string
	UserAvatar string
	Content    string
}

// Actor 描述发起删除的用户。
type Actor struct {
	UserID  string
	IsAdmin bool
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB, mode *BackendMode) *CommentService {
	return &CommentService{db: gdb, mode: mode, now: time.Now}
}

func noComments() []db.Comment { return nil }

// ListByPost 按发表时间正序返回文章的评论。
func (s *CommentService) ListByPost(ctx context.Context, postID string) []db.Comment {
	return readFiltered(ctx, s.db, s.mode, commentModule, "list_by_post", noComments, func(q *gorm.DB) ([]db.Comment, error) {
		var comments []db.Comment
		err := q.Where("post_id = ?", postID).Order("created_at asc").Find(&comments).Error
		return comments, err
	})
}

// Add 保存评论，创建时间由服务端写入。
func (s *CommentService) Add(ctx context.Context, input CommentInput) (*db.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrCommentEmpty
	}

	comment := db.Comment{
		PostID:     input.PostID,
		UserID:     input.UserID,
		UserName:   strings.TrimSpace(input.UserName),
		UserAvatar: strings.TrimSpace(input.UserAvatar),
		Content:    content,
		CreatedAt:  s.now(),
	}

	id, ok := writeAdd(ctx, s.db, s.mode, commentModule, func(q *gorm.DB) (string, error) {
		if err := q.Create(&comment).Error; err != nil {
			return "", err
		}
		return comment.ID, nil
	})
	if !ok {
		return nil, ErrCommentFailed
	}
	comment.ID = id
	return &comment, nil
}

// Delete 删除评论，只有作者或管理员可以删除。
func (s *CommentService) Delete(ctx context.Context, id string, actor Actor) error {
	if s.mode.Local() || s.db == nil {
		logx.Info(commentModule, "delete", "local mode, write to %s skipped", id)
		return nil
	}

	var comment db.Comment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		logx.Error(commentModule, "delete", "%s: %v", id, err)
		return ErrCommentFailed
	}
	if !actor.IsAdmin && (actor.UserID == "" || actor.UserID != comment.UserID) {
		return ErrCommentForbidden
	}

	if !writeOp(ctx, s.db, s.mode, commentModule, "delete", id, func(q *gorm.DB) error {
		return q.Where("id = ?", id).Delete(&db.Comment{}).Error
	}) {
		return ErrCommentFailed
	}
	return nil
}
