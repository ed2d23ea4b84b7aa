// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/pkg/uuidv7"
)

// Service resolves and maintains stored authors.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs an author [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListAuthors(ctx context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	return service.repo.ListAuthors(ctx, filter, limit, offset)
}

func (service *Service) GetAuthor(ctx context.Context, id string) (*Author, error) {
	return service.repo.GetAuthor(ctx, id)
}

// # Credit Resolution

/*
ResolveCredits maps merged contributions to stored authors.

Description: A contribution with identifiers is looked up by any of them. No
match creates an author, one match receives the identifiers it was missing,
several matches abort with IDENTITY_CONFLICT because two stored authors would
have to be merged first. Contributions known only by name reuse the single
identifier-less author of that name, or create one.

Returns one credit per resolved author; an author credited twice with
different roles is credited once as [series.RoleBoth].
*/
func (service *Service) ResolveCredits(ctx context.Context, contributions []series.Contribution) ([]series.Credit, error) {
	credits := make([]series.Credit, 0, len(contributions))
	index := map[string]int{}

	for _, contribution := range contributions {
		author, err := service.resolve(ctx, contribution)
		if err != nil {
			return nil, err
		}

		if at, found := index[author.ID]; found {
			if credits[at].Role != contribution.Role {
				credits[at].Role = series.RoleBoth
			}
			continue
		}
		index[author.ID] = len(credits)
		credits = append(credits, series.Credit{AuthorID: author.ID, Name: author.Name, Role: contribution.Role})
	}

	return credits, nil
}

func (service *Service) resolve(ctx context.Context, contribution series.Contribution) (*Author, error) {
	ids := contribution.IDs.AuthorIDs()
	name := strings.TrimSpace(contribution.Name)

	if len(ids) == 0 {
		return service.resolveByName(ctx, name)
	}

	matches, err := service.repo.FindByAnyID(ctx, ids)
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return service.create(ctx, name, ids)
	case 1:
		return service.fill(ctx, matches[0], name, ids)
	}

	conflicting := make([]string, 0, len(matches))
	for _, match := range matches {
		conflicting = append(conflicting, match.ID)
	}
	service.logger.Warn("author_merge_required",
		slog.String("name", name),
		slog.Any("authors", conflicting),
	)
	return nil, apperr.IdentityConflict("Several stored authors match "+name+"; merge them first", conflicting...)
}

func (service *Service) resolveByName(ctx context.Context, name string) (*Author, error) {
	if name == "" {
		return nil, apperr.ValidationError("Credited author has neither name nor identifier")
	}

	matches, err := service.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return service.create(ctx, name, series.IDs{})
}

func (service *Service) create(ctx context.Context, name string, ids series.IDs) (*Author, error) {
	author := &Author{ID: uuidv7.New(), Name: name, IDs: ids}
	if err := service.repo.CreateAuthor(ctx, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_created",
		slog.String("author_id", author.ID),
		slog.String("name", name),
	)
	return author, nil
}

// fill adds the identifiers a stored author is missing. A provider reporting
// another value for a tag already set is an identity conflict.
func (service *Service) fill(ctx context.Context, author *Author, name string, ids series.IDs) (*Author, error) {
	merged, err := author.IDs.Absorb(ids)
	if err != nil {
		return nil, err
	}

	changed := !merged.Equal(author.IDs)
	if author.Name == "" && name != "" {
		author.Name = name
		changed = true
	}
	if !changed {
		return author, nil
	}

	author.IDs = merged
	if err := service.repo.UpdateAuthor(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

// # Manual Merge

/*
MergeAuthors folds the author other into id.

Description: Identifiers are unioned under the identity rule, so two authors
holding different values for one provider cannot be merged. Credits of other
move to id and other is deleted.
*/
func (service *Service) MergeAuthors(ctx context.Context, id, other string) (*Author, error) {
	if id == other {
		return nil, apperr.ValidationError("Cannot merge an author into itself", apperr.FieldError{
			Field:   FieldOther,
			Message: "Must differ from id",
		})
	}

	keep, err := service.repo.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	absorbed, err := service.repo.GetAuthor(ctx, other)
	if err != nil {
		return nil, err
	}

	ids, err := keep.IDs.Absorb(absorbed.IDs)
	if err != nil {
		return nil, err
	}
	keep.IDs = ids
	if keep.Name == "" {
		keep.Name = absorbed.Name
	}

	if err := service.repo.MergeAuthors(ctx, keep, absorbed.ID); err != nil {
		return nil, err
	}

	service.logger.Warn("authors_merged",
		slog.String("author_id", keep.ID),
		slog.String("absorbed_id", absorbed.ID),
	)
	return keep, nil
}
