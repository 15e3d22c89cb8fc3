package main

import (
	"github.com/ssargent/utmptrace/cmd/utmptrace/cmd"
	"github.com/ssargent/utmptrace/pkg/di"
)

func main() {
	// Initialize dependency injection container
	container := di.NewContainer()

	// Inject dependencies into cmd package
	cmd.SetContainer(container)

	cmd.Execute()
}
