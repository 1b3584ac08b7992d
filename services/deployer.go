package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DeployRequest é o corpo enviado à função de implantação de contratos.
type DeployRequest struct {
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Decimals         uint8  `json:"decimals"`
	StableToken      string `json:"stableToken"`
	YieldPercentage  int64  `json:"yieldPercentage"`
	StartTimestamp   int64  `json:"startTimestamp"`
	EndTimestamp     int64  `json:"endTimestamp"`
	EndPoolTimestamp int64  `json:"endPoolTimestamp"`
	MinDeposit       string `json:"minDeposit"`
	MinAssets        string `json:"minAssets"`
	MaxAssets        string `json:"maxAssets"`
	IdentityRegistry string `json:"identityRegistry"`
}

// DeployResponse traz os endereços implantados.
type DeployResponse struct {
	DefaultCompliance   string `json:"defaultCompliance"`
	TokenImplementation string `json:"tokenImplementation"`
}

// Deployer implanta os contratos de um novo título.
type Deployer interface {
	Deploy(ctx context.Context, req DeployRequest) (DeployResponse, error)
}

// HTTPDeployer chama a função externa de implantação (POST / com JSON).
type HTTPDeployer struct {
	URL    string
	Client *http.Client
}

func NewHTTPDeployer(url string) *HTTPDeployer {
	// A implantação espera a mineração de dois contratos.
	return &HTTPDeployer{URL: url, Client: &http.Client{Timeout: 5 * time.Minute}}
}

func (d *HTTPDeployer) Deploy(ctx context.Context, req DeployRequest) (DeployResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return DeployResponse{}, fmt.Errorf("falha ao serializar pedido de implantação: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return DeployResponse{}, fmt.Errorf("falha ao criar pedido de implantação: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(httpReq)
	if err != nil {
		return DeployResponse{}, fmt.Errorf("falha ao chamar função de implantação: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return DeployResponse{}, fmt.Errorf("função de implantação retornou %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out DeployResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return DeployResponse{}, fmt.Errorf("resposta de implantação inválida: %w", err)
	}
	if out.TokenImplementation == "" {
		return DeployResponse{}, fmt.Errorf("resposta de implantação sem endereço do token")
	}
	return out, nil
}
