package httpadapter

import (
	"context"
	"errors"
	"testing"

	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
	httptransport "ensgrants/contexts/funding/grants-service/transport/http"
)

func TestHandlersRejectMissingData(t *testing.T) {
	handler := Handler{}

	if _, err := handler.CreateRoundHandler(context.Background(), httptransport.CreateRoundRequest{Signature: "0xsig"}); !errors.Is(err, domainerrors.ErrMalformedRequest) {
		t.Fatalf("expected malformed request for missing roundData, got %v", err)
	}
	if _, err := handler.CreateGrantHandler(context.Background(), httptransport.CreateGrantRequest{Signature: "0xsig"}); !errors.Is(err, domainerrors.ErrMalformedRequest) {
		t.Fatalf("expected malformed request for missing grantData, got %v", err)
	}
}
