package service

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
	"github.com/badlog/internal/seed"
)

const (
	experienceModule = "experiences"
	skillModule      = "skills"
	homeInfoModule   = "home_info"
)

// ExperienceService 管理关于页的经历条目。
type ExperienceService struct {
	db   *gorm.DB
	mode *BackendMode
	seed *seed.Content
}

// NewExperienceService creates an ExperienceService instance.
func NewExperienceService(gdb *gorm.DB, mode *BackendMode, content *seed.Content) *ExperienceService {
	return &ExperienceService{db: gdb, mode: mode, seed: content}
}

// ListAll returns experiences ordered by their order field.
func (s *ExperienceService) ListAll(ctx context.Context) []db.Experience {
	return readAll(ctx, s.db, s.mode, experienceModule, s.seed.Experiences, func(q *gorm.DB) ([]db.Experience, error) {
		var items []db.Experience
		err := q.Order("sort_order asc").Find(&items).Error
		return items, err
	})
}

// Add 新增经历并返回 ID，未知类型归为 education。
func (s *ExperienceService) Add(ctx context.Context, exp db.Experience) (string, bool) {
	exp.ID = ""
	exp.Type = normalizeExperienceType(exp.Type)
	return writeAdd(ctx, s.db, s.mode, experienceModule, func(q *gorm.DB) (string, error) {
		if err := q.Create(&exp).Error; err != nil {
			return "", err
		}
		return exp.ID, nil
	})
}

// Update applies a partial update.
func (s *ExperienceService) Update(ctx context.Context, id string, patch ExperiencePatch) bool {
	if patch.Type != nil {
		t := normalizeExperienceType(*patch.Type)
		patch.Type = &t
	}
	return writeOp(ctx, s.db, s.mode, experienceModule, "update", id, func(q *gorm.DB) error {
		return applyPatch(q, &db.Experience{}, id, patch.updates())
	})
}

// Delete removes an experience.
func (s *ExperienceService) Delete(ctx context.Context, id string) bool {
	return writeOp(ctx, s.db, s.mode, experienceModule, "delete", id, func(q *gorm.DB) error {
		return q.Where("id = ?", id).Delete(&db.Experience{}).Error
	})
}

func normalizeExperienceType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case db.ExperienceTypeWork:
		return db.ExperienceTypeWork
	case db.ExperienceTypeActivity:
		return db.ExperienceTypeActivity
	default:
		return db.ExperienceTypeEducation
	}
}

// SkillService 管理技能分类。
type SkillService struct {
	db   *gorm.DB
	mode *BackendMode
	seed *seed.Content
}

// NewSkillService creates a SkillService instance.
func NewSkillService(gdb *gorm.DB, mode *BackendMode, content *seed.Content) *SkillService {
	return &SkillService{db: gdb, mode: mode, seed: content}
}

// ListAll returns skill categories ordered by their order field.
func (s *SkillService) ListAll(ctx context.Context) []db.SkillCategory {
	return readAll(ctx, s.db, s.mode, skillModule, s.seed.Skills, func(q *gorm.DB) ([]db.SkillCategory, error) {
		var items []db.SkillCategory
		err := q.Order("sort_order asc").Find(&items).Error
		return items, err
	})
}

// Save 在 ID 为空时新增分类，否则按 ID 合并写入（不存在则创建）。返回分类 ID。
func (s *SkillService) Save(ctx context.Context, skill db.SkillCategory) (string, bool) {
	skill.Items = normalizeTags(skill.Items)
	if skill.ID == "" {
		return writeAdd(ctx, s.db, s.mode, skillModule, func(q *gorm.DB) (string, error) {
			if err := q.Create(&skill).Error; err != nil {
				return "", err
			}
			return skill.ID, nil
		})
	}

	ok := writeOp(ctx, s.db, s.mode, skillModule, "save", skill.ID, func(q *gorm.DB) error {
		return q.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"category", "items", "color", "sort_order"}),
		}).Create(&skill).Error
	})
	return skill.ID, ok
}

// Delete removes a skill category.
func (s *SkillService) Delete(ctx context.Context, id string) bool {
	return writeOp(ctx, s.db, s.mode, skillModule, "delete", id, func(q *gorm.DB) error {
		return q.Where("id = ?", id).Delete(&db.SkillCategory{}).Error
	})
}

// HomeInfoService 管理首页文字区块。
type HomeInfoService struct {
	db   *gorm.DB
	mode *BackendMode
	seed *seed.Content
}

// NewHomeInfoService creates a HomeInfoService instance.
func NewHomeInfoService(gdb *gorm.DB, mode *BackendMode, content *seed.Content) *HomeInfoService {
	return &HomeInfoService{db: gdb, mode: mode, seed: content}
}

// ListAll returns the homepage blocks in display order.
func (s *HomeInfoService) ListAll(ctx context.Context) []db.HomeInfo {
	return readAll(ctx, s.db, s.mode, homeInfoModule, s.seed.HomeInfo, func(q *gorm.DB) ([]db.HomeInfo, error) {
		var items []db.HomeInfo
		err := q.Order("sort_order asc").Find(&items).Error
		return items, err
	})
}

// Upsert 合并写入指定 ID 的区块：存在时只更新 patch 中的字段，不存在时创建。
func (s *HomeInfoService) Upsert(ctx context.Context, id string, patch HomeInfoPatch) bool {
	id = strings.TrimSpace(id)
	return writeOp(ctx, s.db, s.mode, homeInfoModule, "upsert", id, func(q *gorm.DB) error {
		return q.Transaction(func(tx *gorm.DB) error {
			if updates := patch.updates(); len(updates) > 0 {
				result := tx.Model(&db.HomeInfo{}).Where("id = ?", id).Updates(updates)
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected > 0 {
					return nil
				}
			}

			info := db.HomeInfo{ID: id}
			if patch.Title != nil {
				info.Title = strings.TrimSpace(*patch.Title)
			}
			if patch.Content != nil {
				info.Content = *patch.Content
			}
			if patch.AccentColor != nil {
				info.AccentColor = strings.TrimSpace(*patch.AccentColor)
			}
			if patch.Order != nil {
				info.Order = *patch.Order
			}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&info).Error
		})
	})
}

// InitializeDefaults 在表为空时写入默认的三个区块。
func (s *HomeInfoService) InitializeDefaults(ctx context.Context) error {
	if s.mode.Local() || s.db == nil {
		return nil
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&db.HomeInfo{}).Count(&total).Error; err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	defaults := s.seed.HomeInfo()
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return err
	}
	logx.Info(homeInfoModule, "initialize_defaults", "wrote %d default blocks", len(defaults))
	return nil
}
