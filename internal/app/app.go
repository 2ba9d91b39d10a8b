package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/config"
	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/eventbus"
	"github.com/YashRaythatha/hackathon-code-validation/internal/handler"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/cache"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/database"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/github"
	"github.com/YashRaythatha/hackathon-code-validation/internal/repository"
	"github.com/YashRaythatha/hackathon-code-validation/internal/router"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service/judgeconfig"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service/orchestrator"
	"github.com/YashRaythatha/hackathon-code-validation/internal/subscriber"
)

// 学习状态存储类型
const (
	LearningStoreMemory = "memory"
	LearningStoreFile   = "file"
	LearningStoreDB     = "db"
)

// App 组装好的应用依赖
type App struct {
	Config       *config.Config
	DB           *gorm.DB
	Registry     agents.Registry
	Learning     *agents.LearningAgent
	Judge        *judgeconfig.Store
	Orchestrator *orchestrator.Orchestrator
	Grader       *service.GraderService
	AnalysisRepo repository.AnalysisRepository
	AnalysisBus  *eventbus.AnalysisEventBus
	JudgeBus     *eventbus.JudgeConfigEventBus
}

// New 按配置初始化数据库、Agent、编排器与评分服务，并注册事件订阅
func New(cfg *config.Config) (*App, error) {
	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if cfg.Database.Type != "mysql" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	a := &App{
		Config:       cfg,
		DB:           db,
		AnalysisRepo: repository.NewAnalysisRepository(db),
		AnalysisBus:  eventbus.NewAnalysisEventBus(),
		JudgeBus:     eventbus.NewJudgeConfigEventBus(),
	}

	reg := agents.NewDefaultRegistry(a.learningStore())
	if learner, err := reg.Get(agents.IDLearning); err == nil {
		a.Learning, _ = learner.(*agents.LearningAgent)
	}
	a.Registry = reg

	a.Judge, err = judgeconfig.NewStore(cfg.Judge.ConfigPath)
	if err != nil {
		return nil, err
	}

	a.Orchestrator, err = orchestrator.NewOrchestrator(reg, orchestrator.Options{
		Parallelism: cfg.Orchestrator.Parallelism,
		HistoryCap:  cfg.Orchestrator.HistoryCap,
		Weights:     a.Judge,
	})
	if err != nil {
		return nil, err
	}

	reportCache, err := cache.New[*domain.Report](cfg.Cache.MaxSize)
	if err != nil {
		return nil, err
	}
	fetcher := github.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Token, cfg.GitHub.FetchTimeout)
	a.Grader = service.NewGraderService(a.Orchestrator, fetcher, reportCache, a.AnalysisBus, cfg.GitHub.FetchTimeout)

	subscriber.NewAnalysisEventSubscriber(a.AnalysisRepo).Register(a.AnalysisBus)
	subscriber.NewJudgeConfigEventSubscriber(a.Grader).Register(a.JudgeBus)

	klog.V(6).Infof("应用初始化完成: db=%s, learning=%s, parallelism=%d", cfg.Database.Type, cfg.Learning.Store, cfg.Orchestrator.Parallelism)
	return a, nil
}

func (a *App) learningStore() agents.LearningStore {
	switch a.Config.Learning.Store {
	case LearningStoreMemory:
		return agents.NewMemoryLearningStore(nil)
	case LearningStoreDB:
		return repository.NewLearningStateRepository(a.DB)
	default:
		return agents.NewFileLearningStore(a.Config.Learning.Path)
	}
}

// Router 构建 HTTP 路由
func (a *App) Router() *gin.Engine {
	return router.Setup(
		a.Config,
		handler.NewAnalysisHandler(a.Grader, a.AnalysisRepo),
		handler.NewAgentHandler(a.Registry),
		handler.NewJudgeConfigHandler(a.Judge, a.JudgeBus),
		handler.NewSystemHandler(a.Grader, a.learningStats()),
	)
}

// learningStats 学习 Agent 未注册时返回 nil 接口
func (a *App) learningStats() handler.LearningStatsProvider {
	if a.Learning == nil {
		return nil
	}
	return a.Learning
}

// Close 保存学习状态并释放协程池与数据库连接
func (a *App) Close(ctx context.Context) {
	if a.Learning != nil {
		if err := a.Learning.Flush(ctx); err != nil {
			klog.Errorf("学习状态保存失败: %v", err)
		}
	}
	if a.Orchestrator != nil {
		a.Orchestrator.Stop()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
