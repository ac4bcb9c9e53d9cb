package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badlog/internal/logx"
	"github.com/badlog/internal/seed"
)

const seedModule = "seed"

// SeedResult 汇总一次初始化的结果。
type SeedResult struct {
	Connected bool
	Inserted  int
}

// Seeder 在后端首次可用且没有文章时导入种子文章。
type Seeder struct {
	db    *gorm.DB
	mode  *BackendMode
	seed  *seed.Content
	probe *Probe
	posts *PostService
	home  *HomeInfoService
}

// NewSeeder creates a Seeder instance.
func NewSeeder(gdb *gorm.DB, mode *BackendMode, content *seed.Content) *Seeder {
	return &Seeder{
		db:    gdb,
		mode:  mode,
		seed:  content,
		probe: NewProbe(gdb, mode),
		posts: NewPostService(gdb, mode, content),
		home:  NewHomeInfoService(gdb, mode, content),
	}
}

// InitializeBackend 探测后端，不可达时切换到本地模式并返回。
// 可达且文章表为空时，在一个事务里导入全部种子文章。每篇种子文章以 seed_key 去重，
// 因此重复调用或并发调用都只会留下一份。任何错误都会让进程进入本地模式。
func (s *Seeder) InitializeBackend(ctx context.Context) SeedResult {
	if s.mode.Local() {
		return SeedResult{}
	}
	if !s.probe.CheckConnection(ctx) {
		return SeedResult{}
	}

	result := SeedResult{Connected: true}
	inserted, err := s.seedPosts(ctx)
	if err != nil {
		logx.Error(seedModule, "initialize_backend", "%v", err)
		s.mode.EnableLocal(err.Error())
		return SeedResult{}
	}
	result.Inserted = inserted

	if err := s.home.InitializeDefaults(ctx); err != nil {
		logx.Error(seedModule, "initialize_backend", "home info defaults: %v", err)
		s.mode.EnableLocal(err.Error())
		return SeedResult{}
	}
	return result
}

func (s *Seeder) seedPosts(ctx context.Context) (int, error) {
	total, err := s.posts.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		return 0, nil
	}
	return s.insertSeedPosts(ctx)
}

// insertSeedPosts 写入全部种子文章，已存在相同 seed_key 的文章会被跳过。
func (s *Seeder) insertSeedPosts(ctx context.Context) (int, error) {
	var inserted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range s.seed.Posts() {
			key := p.ID
			p.ID = ""
			p.SeedKey = &key
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "seed_key"}},
				DoNothing: true,
			}).Create(&p)
			if res.Error != nil {
				return fmt.Errorf("insert seed post %s: %w", key, res.Error)
			}
			inserted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		logx.Info(seedModule, "seed_posts", "imported %d seed posts", inserted)
	}
	return int(inserted), nil
}
