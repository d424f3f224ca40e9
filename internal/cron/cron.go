package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/config"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/robfig/cron/v3"
)

const notificationRetention = 30 * 24 * time.Hour

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	services *service.Services

	notificationRepo repository.NotificationRepository
	invitationRepo   repository.InvitationRepository
	userRepo         repository.UserRepository

	reminderDays  int
	retentionDays int
	now           func() time.Time
}

// NewScheduler creates a scheduler. Reminder and retention windows come from cfg.
func NewScheduler(services *service.Services, repos *repository.Repositories, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		services:         services,
		notificationRepo: repos.NotificationRepo,
		invitationRepo:   repos.InvitationRepo,
		userRepo:         repos.UserRepo,
		reminderDays:     cfg.VDCRReminderDays,
		retentionDays:    cfg.ActivityRetentionDays,
		now:              time.Now,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every day at 9 AM - Documents stuck in review
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running VDCR review reminders...")
		s.sendReviewReminders()
	})

	// Run every hour - Expire stale invitations
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running invitation expiry...")
		s.expireInvitations()
	})

	// Run every day at 3 AM - Drop expired refresh tokens
	s.cron.AddFunc("0 3 * * *", func() {
		log.Println("[Cron] Running refresh token cleanup...")
		s.cleanupRefreshTokens()
	})

	// Clean up old notifications and activity - Run every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running weekly cleanup...")
		s.cleanupOldNotifications()
		s.cleanupActivity()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[Cron] Scheduler stopped")
}

// sendReviewReminders nags project managers about documents waiting on review
func (s *Scheduler) sendReviewReminders() int {
	if s.reminderDays <= 0 {
		log.Println("[Cron] VDCR reminders disabled")
		return 0
	}

	sent, err := s.services.VDCR.SendReviewReminders(context.Background(), s.reminderDays)
	if err != nil {
		log.Printf("[Cron] Error sending VDCR reminders: %v", err)
		return 0
	}
	log.Printf("[Cron] Sent %d VDCR review reminders", sent)
	return sent
}

// cleanupOldNotifications removes read notifications older than 30 days
func (s *Scheduler) cleanupOldNotifications() int {
	n, err := s.notificationRepo.DeleteOlderThan(context.Background(), s.now().Add(-notificationRetention), true)
	if err != nil {
		log.Printf("[Cron] Error cleaning notifications: %v", err)
		return 0
	}
	log.Printf("[Cron] Removed %d old notifications", n)
	return n
}

// cleanupActivity trims the activity log to the retention window
func (s *Scheduler) cleanupActivity() int {
	if s.retentionDays <= 0 {
		return 0
	}

	n, err := s.services.Activity.Cleanup(context.Background(), s.retentionDays)
	if err != nil {
		log.Printf("[Cron] Error cleaning activity log: %v", err)
		return 0
	}
	log.Printf("[Cron] Removed %d activity log entries", n)
	return n
}

// expireInvitations flips pending invitations past their expiry to expired
func (s *Scheduler) expireInvitations() int {
	n, err := s.invitationRepo.ExpireOlderThan(context.Background(), s.now())
	if err != nil {
		log.Printf("[Cron] Error expiring invitations: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("[Cron] Expired %d invitations", n)
	}
	return n
}

func (s *Scheduler) cleanupRefreshTokens() int {
	n, err := s.userRepo.DeleteExpiredRefreshTokens(context.Background(), s.now())
	if err != nil {
		log.Printf("[Cron] Error removing refresh tokens: %v", err)
		return 0
	}
	return n
}

// ManualTrigger runs one job (or "all") immediately and returns how many rows it touched.
func (s *Scheduler) ManualTrigger(job string) (int, error) {
	switch job {
	case "vdcr_reminders":
		return s.sendReviewReminders(), nil
	case "invitations":
		return s.expireInvitations(), nil
	case "tokens":
		return s.cleanupRefreshTokens(), nil
	case "notifications":
		return s.cleanupOldNotifications(), nil
	case "activity":
		return s.cleanupActivity(), nil
	case "all":
		total := s.sendReviewReminders()
		total += s.expireInvitations()
		total += s.cleanupRefreshTokens()
		total += s.cleanupOldNotifications()
		total += s.cleanupActivity()
		return total, nil
	}
	return 0, fmt.Errorf("unknown cron job %q", job)
}
