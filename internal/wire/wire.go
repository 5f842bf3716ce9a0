//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/app"
)

// InitializeApp builds the fully wired application. The returned cleanup
// closes the database connection.
func InitializeApp() (*app.App, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}
