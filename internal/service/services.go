package service

import (
	"github.com/deppfellow/guitars-serverless/internal/repository"
)

// Services is a container for all service instances.
type Services struct {
	Guitars *GuitarService
}

func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Guitars: NewGuitarService(repos.Guitars),
	}
}
