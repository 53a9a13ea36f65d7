// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/blogicum/internal/auth"
	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/store"
)

// Registration is the sign-up form.
type Registration struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// ProfileInput is the profile edit form.
type ProfileInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// validateProfile checks the fields shared by registration and profile edit.
func (s *Service) validateProfile(ctx context.Context, userID int64, username, firstName, lastName, email string, verr *ValidationError) {
	if err := auth.ValidateUsername(username); err != nil {
		verr.Add("username", err.Error())
	} else {
		taken, err := s.queries.UsernameTaken(ctx, store.UsernameTakenParams{
			Username:  username,
			ExcludeID: userID,
		})
		if err != nil {
			slog.Error("failed to check username", "error", err)
			verr.Add("username", "Could not check the username, try again.")
		} else if taken {
			verr.Add("username", "A user with that username already exists.")
		}
	}

	if utf8.RuneCountInString(firstName) > model.MaxPersonName {
		verr.Add("first_name", fmt.Sprintf("Ensure this value has at most %d characters.", model.MaxPersonName))
	}
	if utf8.RuneCountInString(lastName) > model.MaxPersonName {
		verr.Add("last_name", fmt.Sprintf("Ensure this value has at most %d characters.", model.MaxPersonName))
	}

	if email != "" {
		if len(email) > model.MaxEmailLength {
			verr.Add("email", fmt.Sprintf("Ensure this value has at most %d characters.", model.MaxEmailLength))
		} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			verr.Add("email", "Enter a valid email address.")
		}
	}
}

// Register creates an account after checking the username and the
// password rules.
func (s *Service) Register(ctx context.Context, in Registration) (*store.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	verr := &ValidationError{}
	s.validateProfile(ctx, 0, in.Username, "", "", in.Email, verr)

	if in.Password != in.PasswordConfirm {
		verr.Add("password_confirm", "The two password fields didn't match.")
	}
	if errs := auth.ValidatePassword(in.Password, in.Username); len(errs) > 0 {
		verr.Add("password", errs[0].Error())
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &user, nil
}

// Authenticate checks credentials and records the login time. Hashes
// created with outdated parameters are upgraded on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*store.User, error) {
	user, err := s.queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Warn("malformed password hash", "category", "auth", "user_id", user.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: hash,
				UpdatedAt:    now,
				ID:           user.ID,
			}); err != nil {
				slog.Warn("failed to upgrade password hash", "category", "auth", "user_id", user.ID, "error", err)
			}
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: now, Valid: true},
		ID:          user.ID,
	}); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return &user, nil
}

// UpdateProfile changes the name, username and email of userID.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*store.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	verr := &ValidationError{}
	s.validateProfile(ctx, userID, in.Username, in.FirstName, in.LastName, in.Email, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	user, err := s.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		UpdatedAt: s.now(),
		ID:        userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return &user, nil
}
