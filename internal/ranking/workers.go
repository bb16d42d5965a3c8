package ranking

import (
	"context"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

const (
	minScoreWorkers = 2
	maxScoreWorkers = 16
)

// ScorePool 评分工作池
// 评分是候选间完全独立的计算, 可以安全并行; 大站点上能显著缩短耗时
type ScorePool struct {
	workers int
}

// NewScorePool 创建工作池, workers<=0时按逻辑CPU数自动定容
func NewScorePool(workers int) *ScorePool {
	if workers <= 0 {
		workers = defaultWorkerCount()
	}
	utils.Debugf("评分工作池: %d个worker", workers)
	return &ScorePool{workers: workers}
}

// Workers 池容量
func (p *ScorePool) Workers() int {
	return p.workers
}

// ScoreAll 并行评分一批页面
// 单个页面的评分失败不影响其他页面; 全部完成后返回
func (p *ScorePool) ScoreAll(ctx context.Context, engine *Engine, pages []*models.PageCandidate) {
	if len(pages) == 0 {
		return
	}

	workers := p.workers
	if workers > len(pages) {
		workers = len(pages)
	}

	jobs := make(chan *models.PageCandidate)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				engine.Score(ctx, page)
			}
		}()
	}

	for _, page := range pages {
		select {
		case jobs <- page:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

// defaultWorkerCount 按逻辑CPU数定容, 限制在[2,16]
func defaultWorkerCount() int {
	count, err := cpu.Counts(true)
	if err != nil || count <= 0 {
		count = runtime.NumCPU()
	}
	if count < minScoreWorkers {
		return minScoreWorkers
	}
	if count > maxScoreWorkers {
		return maxScoreWorkers
	}
	return count
}
