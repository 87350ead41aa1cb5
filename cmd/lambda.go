package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

// lambdaCmd serves the API through a Lambda Function URL in RESPONSE_STREAM
// mode. Build with -tags lambda.norpc for the provided.al2023 runtime.
var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda Function URL handler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		lambda.Start(a.handler.HandleFunctionURL)
		return nil
	},
}
