package client

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/repository"
)

// BearerToken returns an interceptor that attaches the persisted credential
// as an Authorization header. A storage failure is logged and the request is
// sent without a credential.
func BearerToken(sessions repository.SessionRepository, logger *zap.Logger) RequestInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req *fasthttp.Request) error {
		if sessions == nil {
			return nil
		}
		token, err := sessions.Get(ctx, domain.SessionTokenKey)
		if err != nil {
			logger.Warn("could not read stored credential, sending request without it", zap.Error(err))
			return nil
		}
		if token != "" {
			req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
		}
		return nil
	}
}
