package auth

import (
	"net/http"
	"testing"

	"opensign-hq/relay/pkg/config"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(config.DefaultConfig().Auth)

	tests := []struct {
		method string
		path   string
		want   OperationClass
	}{
		{http.MethodPost, "functions/signPdf", Privileged},
		{http.MethodPost, "functions/addUser", Privileged},
		{http.MethodGet, "users/u1", Privileged},
		{http.MethodPost, "functions/getDocument", Ordinary},
		{http.MethodPost, "classes/contracts_Document", ClassOperation},
		{http.MethodPut, "classes/contracts_Template/t1", ClassOperation},
		{http.MethodGet, "classes/contracts_Document", Ordinary},
		{http.MethodDelete, "classes/contracts_Document/d1", Ordinary},
		{http.MethodPost, "classes/contracts_Other", Ordinary},
		{http.MethodPost, "/classes/contracts_Signers/", ClassOperation},
		{http.MethodPost, "usersettings", Ordinary},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if got := c.Classify(tt.method, tt.path); got != tt.want {
				t.Errorf("Classify(%s, %s) = %s, want %s", tt.method, tt.path, got, tt.want)
			}
		})
	}
}
