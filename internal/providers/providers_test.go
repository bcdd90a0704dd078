package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-row/chapterhouse/internal/config"
)

func TestSendGridEmailProvider_SendBatch_OnePersonalizationPerRecipient(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	p := NewSendGridEmailProvider(config.EmailConfig{SendgridAPIKey: "test-key", FromName: "Chapter", FromAddress: "no-reply@example.com"})
	p.host = server.URL

	errs := p.SendBatch(context.Background(), []EmailMessage{
		{To: "a@example.com", Subject: "Hi", Text: "hello"},
		{To: "b@example.com", Subject: "Hi", Text: "hello"},
	})

	require.Len(t, errs, 2)
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	pers, ok := body["personalizations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, pers, 2)
}

func TestSendGridEmailProvider_SendBatch_UpstreamErrorFailsWholeBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	p := NewSendGridEmailProvider(config.EmailConfig{SendgridAPIKey: "bad", FromAddress: "no-reply@example.com"})
	p.host = server.URL

	errs := p.SendBatch(context.Background(), []EmailMessage{{To: "a@example.com", Subject: "s", Text: "t"}, {To: "b@example.com", Subject: "s", Text: "t"}})
	require.Len(t, errs, 2)
	assert.Error(t, errs[0])
	assert.Error(t, errs[1])
}

func TestConsoleProviders_NeverFail(t *testing.T) {
	errs := ConsoleEmailProvider{}.SendBatch(context.Background(), []EmailMessage{{To: "a@example.com"}})
	assert.Equal(t, []error{nil}, errs)
	assert.NoError(t, ConsoleSMSProvider{}.Send(context.Background(), "+15555550100", "hi"))
}

func TestFactory_UnknownProvider(t *testing.T) {
	_, err := NewEmailProvider(config.EmailConfig{Provider: "pigeon"})
	assert.Error(t, err)
	_, err = NewSMSProvider(config.SMSConfig{Provider: "pigeon"})
	assert.Error(t, err)

	sms, err := NewSMSProvider(config.SMSConfig{Provider: "twilio", TwilioAccountSID: "AC123", TwilioAuthToken: "tok", TwilioFromNumber: "+15555550100"})
	require.NoError(t, err)
	assert.Equal(t, "twilio", sms.Name())
}
