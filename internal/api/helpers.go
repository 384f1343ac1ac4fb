package api

import (
	"github.com/mailib/mailib-server/internal/api/dto"
	"github.com/mailib/mailib-server/internal/domain"
	domainerrors "github.com/mailib/mailib-server/internal/errors"
)

// bookRef parses the route pair into a reference.
func bookRef(p dto.BookPath) (domain.BookRef, error) {
	ref, err := domain.ParseBookRef(p.Type, p.ID)
	if err != nil {
		return domain.BookRef{}, domainerrors.Validation(err.Error())
	}
	return ref, nil
}

func ok(msg string) *dto.MessageOutput {
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: msg}}
}
