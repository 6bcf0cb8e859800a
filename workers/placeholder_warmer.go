package workers

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/camden-git/castingvitrine/detail"
	"github.com/camden-git/castingvitrine/models"
)

type PlaceholderJob struct {
	Width  int
	Height int
	Text   string
}

func (j PlaceholderJob) key() string {
	return fmt.Sprintf("%dx%d|%s", j.Width, j.Height, j.Text)
}

// Renderer is the part of media.Processor the warmer needs.
type Renderer interface {
	Placeholder(width, height int, text string) (relPath string, cached bool, err error)
}

// Observer receives queue events. It may be nil.
type Observer interface {
	WarmerJobQueued(queueLen int)
	WarmerJobDropped()
	WarmerJobDone(queueLen int)
}

// PlaceholderWarmer pre-renders placeholders in the background so the first card page does not
// wait on image encoding.
type PlaceholderWarmer struct {
	JobQueue chan PlaceholderJob
	Renderer Renderer
	Observer Observer
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex
	stopOnce sync.Once
}

func NewPlaceholderWarmer(renderer Renderer, observer Observer, queueSize, numWorkers int) *PlaceholderWarmer {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	pw := &PlaceholderWarmer{
		JobQueue: make(chan PlaceholderJob, queueSize),
		Renderer: renderer,
		Observer: observer,
		StopChan: make(chan struct{}),
		Pending:  make(map[string]bool),
	}

	pw.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go pw.worker(i)
	}
	log.Printf("started %d placeholder worker(s) with queue size %d", numWorkers, queueSize)

	return pw
}

func (pw *PlaceholderWarmer) worker(id int) {
	defer pw.Wg.Done()
	for {
		select {
		case job := <-pw.JobQueue:
			pw.processJob(job)
			pw.Mutex.Lock()
			delete(pw.Pending, job.key())
			pw.Mutex.Unlock()
			if pw.Observer != nil {
				pw.Observer.WarmerJobDone(len(pw.JobQueue))
			}

		case <-pw.StopChan:
			log.Printf("placeholder worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (pw *PlaceholderWarmer) processJob(job PlaceholderJob) {
	relPath, cached, err := pw.Renderer.Placeholder(job.Width, job.Height, job.Text)
	if err != nil {
		log.Printf("ERROR pre-rendering %dx%d placeholder %q: %v", job.Width, job.Height, job.Text, err)
		return
	}
	if !cached {
		log.Printf("pre-rendered placeholder %s", relPath)
	}
}

// QueueJob never blocks: a job already pending, or one that does not fit in the queue, is
// dropped and false is returned.
func (pw *PlaceholderWarmer) QueueJob(job PlaceholderJob) bool {
	key := job.key()
	pw.Mutex.Lock()
	if pw.Pending[key] {
		pw.Mutex.Unlock()
		pw.dropped()
		return false
	}
	pw.Pending[key] = true
	pw.Mutex.Unlock()

	select {
	case pw.JobQueue <- job:
		if pw.Observer != nil {
			pw.Observer.WarmerJobQueued(len(pw.JobQueue))
		}
		return true
	default:
		log.Printf("WARNING: placeholder job queue full, dropping %s", key)
		pw.Mutex.Lock()
		delete(pw.Pending, key)
		pw.Mutex.Unlock()
		pw.dropped()
		return false
	}
}

func (pw *PlaceholderWarmer) dropped() {
	if pw.Observer != nil {
		pw.Observer.WarmerJobDropped()
	}
}

// Stop signals the workers and waits for them. Jobs still queued are abandoned. Safe to call
// more than once.
func (pw *PlaceholderWarmer) Stop() {
	pw.stopOnce.Do(func() {
		log.Println("stopping placeholder warmer...")
		close(pw.StopChan)
		pw.Wg.Wait()
		log.Println("all placeholder workers stopped")
	})
}

// QueueForTalents queues the card and gallery placeholders of every talent with a missing
// image reference and returns how many jobs were accepted.
func (pw *PlaceholderWarmer) QueueForTalents(talents []models.Talent) int {
	queued := 0
	for i := range talents {
		t := &talents[i]
		text := detail.Initials(t.Name)
		if strings.TrimSpace(t.MainPhotoURL) == "" {
			if pw.QueueJob(PlaceholderJob{Width: detail.MainPhotoWidth, Height: detail.MainPhotoHeight, Text: text}) {
				queued++
			}
		}
		for _, p := range t.Photos {
			if strings.TrimSpace(p) == "" {
				if pw.QueueJob(PlaceholderJob{Width: detail.PhotoWidth, Height: detail.PhotoHeight, Text: text}) {
					queued++
				}
				break
			}
		}
	}
	return queued
}
