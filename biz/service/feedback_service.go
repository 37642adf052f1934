package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/constants"
	"github.com/yi-nology/showcase/pkg/mailer"
)

var (
	ErrAlreadySubscribed = errors.New("email is already subscribed")
	ErrNotSubscribed     = errors.New("email not found in subscription list")
	ErrContactFailed     = errors.New("contact message could not be sent")
)

// RatingInput is a visitor review.
type RatingInput struct {
	Name    string
	Email   string
	Message string
	Rating  int
}

// RatingSummary is the aggregate of every review.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
	Stars   float64 `json:"stars"`
}

// RatingView is a review as listed publicly.
type RatingView struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
	Date    string `json:"date"`
}

// SubmitRating checks the range before touching the database.
func (s *Service) SubmitRating(ctx context.Context, in RatingInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if in.Name == "" || in.Email == "" || in.Message == "" {
		return invalid("All fields are required.")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return invalid("Rating must be between 1 and 5 stars.")
	}
	if err := s.checkEmail(ctx, in.Email); err != nil {
		return err
	}
	return s.logic.ratingDAO.Create(ctx, s.logic.db, &model.Rating{
		Name:    in.Name,
		Email:   in.Email,
		Message: in.Message,
		Rating:  in.Rating,
	})
}

// RatingSummary rounds the average to two decimals and the stars to the
// nearest half.
func (s *Service) RatingSummary(ctx context.Context) (*RatingSummary, error) {
	avg, count, err := s.logic.ratingDAO.Summary(ctx, s.logic.db)
	if err != nil {
		return nil, err
	}
	return &RatingSummary{
		Average: math.Round(avg*100) / 100,
		Count:   count,
		Stars:   math.Round(avg*2) / 2,
	}, nil
}

func (s *Service) RecentRatings(ctx context.Context) ([]RatingView, error) {
	list, err := s.logic.ratingDAO.ListRecent(ctx, s.logic.db, constants.RecentRatingsLimit)
	if err != nil {
		return nil, err
	}
	out := make([]RatingView, 0, len(list))
	for _, r := range list {
		out = append(out, RatingView{
			ID:      r.ID,
			Name:    r.Name,
			Message: r.Message,
			Rating:  r.Rating,
			Date:    r.Date.Format("2006-01-02 15:04"),
		})
	}
	return out, nil
}

func (s *Service) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("Email is required.")
	}
	if err := s.checkEmail(ctx, email); err != nil {
		return err
	}
	created, err := s.logic.subscriberDAO.Create(ctx, s.logic.db, email)
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadySubscribed
	}
	return nil
}

func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("Email is required.")
	}
	n, err := s.logic.subscriberDAO.Delete(ctx, s.logic.db, email)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotSubscribed
	}
	return nil
}

func (s *Service) Subscribers(ctx context.Context) ([]model.Subscriber, error) {
	return s.logic.subscriberDAO.List(ctx, s.logic.db)
}

// Contact mails a visitor message to the site owner.
func (s *Service) Contact(ctx context.Context, name, email, message string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)
	if name == "" || email == "" || message == "" {
		return invalid("All fields are required.")
	}
	if err := s.checkEmail(ctx, email); err != nil {
		return err
	}
	owner := s.smtp.User
	if owner == "" {
		owner = s.smtp.AlertRecipient
	}
	err := s.mailer.Send(ctx, mailer.Message{
		To:      owner,
		Subject: "New Contact Form Submission from " + name,
		Body:    fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s", name, email, message),
		ReplyTo: email,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrContactFailed, err)
	}
	return nil
}
