package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hazlamahedich/shop-sub004/database"
	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/pipeline"
	"github.com/hazlamahedich/shop-sub004/services"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// jobMaxAttempts caps retries per queued message
const jobMaxAttempts = 3

// jobTimeout bounds one end-to-end pipeline run
const jobTimeout = 120 * time.Second

// PipelineWorker drains the conversation job queue. Instant pickup comes
// from Postgres LISTEN/NOTIFY; a 2-second poll covers dropped listener
// connections.
type PipelineWorker struct {
	db       *gorm.DB
	pipe     *pipeline.Pipeline
	resolver *services.MerchantResolver
	history  *services.ChatHistoryService
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewPipelineWorker creates the worker
func NewPipelineWorker(pipe *pipeline.Pipeline) *PipelineWorker {
	db := database.GetDB()
	return &PipelineWorker{
		db:       db,
		pipe:     pipe,
		resolver: services.NewMerchantResolver(db),
		history:  services.NewChatHistoryService(db),
		shutdown: make(chan struct{}),
	}
}

// Start begins the worker loop
func (w *PipelineWorker) Start() {
	log.Println("🤖 Pipeline worker started")

	w.wg.Add(1)
	go w.listenForJobs()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			log.Println("🛑 Pipeline worker shutting down...")
			w.wg.Wait()
			log.Println("✅ Pipeline worker stopped")
			return
		case <-ticker.C:
			w.processJobs()
		}
	}
}

// Stop signals the worker to shut down gracefully
func (w *PipelineWorker) Stop() {
	close(w.shutdown)
}

// listenForJobs sets up Postgres LISTEN with auto-reconnect. Cloud
// Postgres closes LISTEN connections aggressively; the polling fallback
// keeps jobs moving regardless.
func (w *PipelineWorker) listenForJobs() {
	defer w.wg.Done()

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	eventCallback := func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Println("✅ [LISTEN] Connected - instant notifications enabled")
		case pq.ListenerEventDisconnected:
			log.Println("ℹ️  [LISTEN] Disconnected (polling fallback active)")
		case pq.ListenerEventReconnected:
			log.Println("✅ [LISTEN] Reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			if err != nil && !strings.Contains(err.Error(), "connection") && !strings.Contains(err.Error(), "forcibly closed") {
				log.Printf("⚠️  [LISTEN] Error: %v (polling fallback active)\n", err)
			}
		}
	}

	listener := pq.NewListener(connStr, 10*time.Second, time.Minute, eventCallback)

	if err := listener.Listen("conversation_jobs_channel"); err != nil {
		log.Fatalf("Failed to listen on conversation_jobs_channel: %v", err)
	}
	defer listener.Close()

	log.Println("👂 Listening for job notifications on conversation_jobs_channel...")

	keepaliveTicker := time.NewTicker(60 * time.Second)
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-w.shutdown:
			log.Println("🔕 Stopping job listener...")
			return

		case notification := <-listener.Notify:
			if notification != nil {
				log.Println("⚡ [LISTEN] Instant notification - processing jobs")
				w.processJobs()
			}

		case <-keepaliveTicker.C:
			go func() {
				_ = listener.Ping()
			}()
		}
	}
}

// processJobs claims and runs pending jobs one at a time. FOR UPDATE SKIP
// LOCKED lets multiple worker instances share the queue safely.
func (w *PipelineWorker) processJobs() {
	for {
		var job models.ConversationJob
		tx := w.db.Begin()

		err := tx.Raw(`
			SELECT * FROM conversation_jobs
			WHERE status = 'pending'
			AND (next_run_at IS NULL OR next_run_at <= NOW())
			ORDER BY priority ASC, id ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		`).Scan(&job).Error

		if err != nil || job.ID == 0 {
			tx.Rollback()
			return
		}

		tx.Model(&job).Updates(map[string]interface{}{
			"status":     "processing",
			"attempts":   job.Attempts + 1,
			"updated_at": time.Now(),
		})
		tx.Commit()
		job.Attempts++

		w.processJob(&job)
	}
}

// processJob runs one message through the pipeline and delivers the reply
func (w *PipelineWorker) processJob(job *models.ConversationJob) {
	log.Printf("⚙️  Processing job #%d (message: %s, attempt: %d)", job.ID, job.MessageID, job.Attempts)

	start := time.Now()

	attempt := models.ConversationJobAttempt{
		JobID:     job.ID,
		StartedAt: start,
		Status:    "processing",
	}
	w.db.Create(&attempt)

	var chatMsg models.ChatMessage
	if err := w.db.Where("message_id = ?", job.MessageID).First(&chatMsg).Error; err != nil {
		w.failJob(job, &attempt, fmt.Sprintf("Failed to fetch chat message: %v", err))
		return
	}

	merchant, err := w.resolver.ResolveByID(job.MerchantID)
	if err != nil {
		w.failJob(job, &attempt, fmt.Sprintf("Failed to resolve merchant: %v", err))
		return
	}

	// Mark the inbound message read while the reply is being prepared
	go func(token, session, msgID string) {
		if err := services.MarkMessageRead(token, session, []string{msgID}); err != nil {
			log.Printf("⚠️  Failed to mark message read: %v", err)
		}
	}(merchant.ChannelToken, job.SessionID, job.MessageID)

	if err := services.SetTypingState(merchant.ChannelToken, job.SessionID, "composing"); err != nil {
		log.Printf("⚠️  Failed to set typing state: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	resp, err := w.pipe.Process(ctx, merchant, job.SessionID, chatMsg.SenderName, chatMsg.Body)

	if stopErr := services.SetTypingState(merchant.ChannelToken, job.SessionID, "stop"); stopErr != nil {
		log.Printf("⚠️  Failed to stop typing state: %v", stopErr)
	}

	if err != nil {
		w.handlePipelineError(job, &attempt, err)
		return
	}

	latency := time.Since(start).Milliseconds()

	// nil response means the bot deliberately stays silent (hybrid mode)
	if resp == nil {
		w.completeJob(job, &attempt, latency, "silent")
		return
	}

	if err := w.deliver(merchant, job.SessionID, resp); err != nil {
		w.logSend(job, resp.Message, "failed", err.Error())
		w.failJob(job, &attempt, fmt.Sprintf("Failed to send reply: %v", err))
		return
	}
	w.logSend(job, resp.Message, "sent", "")

	go func(merchantID, sessionID, body string) {
		if err := w.history.SaveOutgoingMessage(merchantID, sessionID, body); err != nil {
			log.Printf("⚠️  Failed to save outgoing message: %v", err)
		}
	}(job.MerchantID, job.SessionID, resp.Message)

	w.completeJob(job, &attempt, latency, string(resp.Intent))
	go w.logUsage(job, 0, 0, int(latency), "ok", "")
}

// deliver sends the reply, with product cards when the response carries
// them
func (w *PipelineWorker) deliver(merchant *models.Merchant, sessionID string, resp *models.ConversationResponse) error {
	if len(resp.Products) > 0 {
		return services.SendChannelProducts(merchant.ChannelToken, sessionID, resp.Message, resp.Products)
	}
	return services.SendChannelText(merchant.ChannelToken, sessionID, resp.Message)
}

// completeJob marks the job and attempt done
func (w *PipelineWorker) completeJob(job *models.ConversationJob, attempt *models.ConversationJobAttempt, latency int64, outcome string) {
	now := time.Now()
	w.db.Model(job).Updates(map[string]interface{}{
		"status":     "done",
		"updated_at": now,
	})
	w.db.Model(attempt).Updates(map[string]interface{}{
		"status":   "ok",
		"ended_at": now,
	})
	log.Printf("✅ Job #%d completed in %dms (%s)", job.ID, latency, outcome)
}

// handlePipelineError sorts pipeline failures into retryable and
// permanent using the LLM error taxonomy
func (w *PipelineWorker) handlePipelineError(job *models.ConversationJob, attempt *models.ConversationJobAttempt, err error) {
	log.Printf("🔍 Analyzing error for job #%d: %v", job.ID, err)

	llmErr := services.ClassifyLLMError(err)

	if llmErr.IsAuthError() || llmErr.IsPaymentError() || llmErr.IsModerationError() {
		w.permanentFailJob(job, attempt, fmt.Sprintf("%d: %s", llmErr.Code, llmErr.Message))
		return
	}

	if !llmErr.IsRetryable() {
		w.permanentFailJob(job, attempt, fmt.Sprintf("Non-retryable error: %d - %s", llmErr.Code, llmErr.Message))
		return
	}

	w.failJob(job, attempt, fmt.Sprintf("Pipeline failed (%d): %s", llmErr.Code, llmErr.Message))
}

// permanentFailJob marks the job failed with no retry
func (w *PipelineWorker) permanentFailJob(job *models.ConversationJob, attempt *models.ConversationJobAttempt, errMsg string) {
	log.Printf("🚫 Job #%d permanently failed: %s", job.ID, errMsg)

	now := time.Now()
	w.db.Model(attempt).Updates(map[string]interface{}{
		"status":    "error",
		"ended_at":  now,
		"error_msg": errMsg,
	})
	w.db.Model(job).Updates(map[string]interface{}{
		"status":     "failed",
		"error_msg":  errMsg,
		"updated_at": now,
	})

	go w.logUsage(job, 0, 0, 0, "error", errMsg)
}

// failJob marks the job failed, scheduling a retry while attempts remain
func (w *PipelineWorker) failJob(job *models.ConversationJob, attempt *models.ConversationJobAttempt, errMsg string) {
	log.Printf("❌ Job #%d failed: %s", job.ID, errMsg)

	now := time.Now()
	w.db.Model(attempt).Updates(map[string]interface{}{
		"status":    "error",
		"error_msg": errMsg,
		"ended_at":  now,
	})

	updates := map[string]interface{}{
		"error_msg":  errMsg,
		"updated_at": now,
	}

	if job.Attempts < jobMaxAttempts {
		nextRun := now.Add(30 * time.Second)
		updates["status"] = "pending"
		updates["next_run_at"] = nextRun
		log.Printf("🔄 Job #%d will retry at %s (attempt %d/%d)",
			job.ID, nextRun.Format(time.RFC3339), job.Attempts, jobMaxAttempts)
	} else {
		updates["status"] = "failed"
		log.Printf("💀 Job #%d permanently failed after %d attempts", job.ID, job.Attempts)
		go w.logUsage(job, 0, 0, 0, "error", errMsg)
	}

	w.db.Model(job).Updates(updates)
}

// logSend records one delivery attempt
func (w *PipelineWorker) logSend(job *models.ConversationJob, body, status, errMsg string) {
	sendLog := models.ResponseSendLog{
		MerchantID: job.MerchantID,
		SessionID:  job.SessionID,
		Body:       body,
		Status:     status,
		ErrorMsg:   errMsg,
	}
	if err := w.db.Create(&sendLog).Error; err != nil {
		log.Printf("⚠️  Failed to write send log: %v", err)
	}
}

// logUsage records token spend for billing visibility (async callers)
func (w *PipelineWorker) logUsage(job *models.ConversationJob, inTok, outTok, latencyMs int, status, errorReason string) {
	usage := models.UsageLog{
		MerchantID:   job.MerchantID,
		SessionID:    job.SessionID,
		InputTokens:  inTok,
		OutputTokens: outTok,
		TotalTokens:  inTok + outTok,
		LatencyMs:    latencyMs,
		Status:       status,
		ErrorReason:  errorReason,
	}
	if err := w.db.Create(&usage).Error; err != nil {
		log.Printf("⚠️  Failed to log usage: %v", err)
	}
}
