package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/sirupsen/logrus"

	"github.com/grivax/grivax-api/internal/container"
)

// Jobs accepted here stay queued in the database; a cmd/worker deployment
// picks them up through its sweeper.
func main() {
	c, err := container.New(context.Background())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build application")
	}

	adapter := httpadapter.New(c.Router())
	lambda.Start(adapter.ProxyWithContext)
}
