package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"business-navigator/internal/bootstrap"
	"business-navigator/internal/shared/config"
	"business-navigator/internal/shared/server/respond"
	"business-navigator/internal/shared/telemetry"
)

// proxy builds the router on the first invocation and reuses it across warm starts.
type proxy struct {
	build func() (*gin.Engine, error)

	once    sync.Once
	adapter *ginadapter.GinLambdaV2
	err     error
}

func (p *proxy) init() {
	start := time.Now()
	router, err := p.build()
	if err != nil {
		p.err = err
		telemetry.Error("lambda.cold_start_failed", map[string]any{"error": err.Error()})
		return
	}
	p.adapter = ginadapter.NewV2(router)
	telemetry.Info("lambda.cold_start", map[string]any{"duration_ms": time.Since(start).Milliseconds()})
}

func (p *proxy) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p.once.Do(p.init)
	if p.err != nil {
		return errorResponse("bootstrap_failed", "Service failed to start"), p.err
	}
	return p.adapter.ProxyWithContext(ctx, req)
}

func errorResponse(code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{Code: code, Message: message}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	p := &proxy{build: func() (*gin.Engine, error) {
		app, err := bootstrap.Build(config.Load())
		if err != nil {
			return nil, err
		}
		return app.Router, nil
	}}
	lambda.Start(p.handle)
}
