package renderer

import (
	"context"
	"image"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

const (
	// SubmitTask blocks once this many tiles are waiting
	workerQueueSize = 256
	workerIdleTimeout = 1 * time.Second
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile     *Tile
	TaskID   int           // Index into the frame's tile list
	Renderer *TileRenderer // Frame-specific kernel and grid
	Target   *image.RGBA   // Shared frame image to write to
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  TileStats
	Error  error
}

// WorkerPool manages parallel tile rendering on a reusable set of goroutines.
// Workers live as long as the process, so share one pool per renderer.
type WorkerPool struct {
	pool       worker.DynamicWorkerPool
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		pool:       worker.NewDynamicWorkerPool(numWorkers, workerQueueSize, workerIdleTimeout),
		numWorkers: numWorkers,
	}
}

// Submit queues a tile and delivers its result on results. The results
// channel must have room for every submitted task so workers never block.
func (wp *WorkerPool) Submit(ctx context.Context, task TileTask, results chan<- TileResult) {
	wp.pool.SubmitTask(worker.Task{
		ID: task.TaskID,
		Do: func() (any, error) {
			if err := ctx.Err(); err != nil {
				results <- TileResult{TaskID: task.TaskID, Error: err}
				return nil, err
			}

			stats := task.Renderer.RenderTileBounds(task.Tile.Bounds, task.Target)
			results <- TileResult{TaskID: task.TaskID, Stats: stats}
			return nil, nil
		},
	})
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}
