// internal/router/router_test.go
package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/database"
	"github.com/javajoker/royalty-ledger/internal/i18n"
	"github.com/javajoker/royalty-ledger/internal/logging"
	"github.com/javajoker/royalty-ledger/internal/router"
	"github.com/javajoker/royalty-ledger/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	require.NoError(suite.T(), i18n.Initialize("en"))
}

func (suite *APITestSuite) SetupTest() {
	db, err := database.OpenInMemory()
	require.NoError(suite.T(), err)
	suite.db = db

	cfg := &config.Config{
		JWT:       config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
		Chain:     config.DefaultChainConfig(),
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, ChainRequestsPerSecond: 1000, ChainBurst: 1000},
		I18n:      config.I18nConfig{DefaultLocale: "en"},
		Frontend:  config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}
	logger := logging.Discard()
	suite.router = router.Setup(db, cfg, logger, services.NewBlockchainService(cfg.Chain, logger))
}

func (suite *APITestSuite) TearDownTest() {
	database.Close(suite.db)
}

func (suite *APITestSuite) request(method, path, token string, body interface{}) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response envelope
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w.Code, response
}

func (suite *APITestSuite) connect(wallet string) (token string, accountID string) {
	code, response := suite.request("POST", "/v1/accounts/connect", "", gin.H{"wallet_address": wallet})
	require.Equal(suite.T(), http.StatusCreated, code)

	var auth struct {
		AccessToken string `json:"access_token"`
		Account     struct {
			ID string `json:"id"`
		} `json:"account"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &auth))
	return auth.AccessToken, auth.Account.ID
}

func (suite *APITestSuite) TestHealth() {
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestRoyaltyFlow() {
	creatorToken, _ := suite.connect("0x00000000000000000000000000000000000000c1")
	fanToken, _ := suite.connect("0x00000000000000000000000000000000000000f1")
	ipID := "0x00000000000000000000000000000000000000e1"

	// Register a track that is already an IP asset
	code, response := suite.request("POST", "/v1/music", creatorToken, gin.H{
		"title":          "Sunrise",
		"audio_ipfs_cid": "bafyaudio",
		"image_ipfs_cid": "bafyimage",
		"ip_id":          ipID,
		"license_id":     "5",
	})
	require.Equal(suite.T(), http.StatusCreated, code, response.Error)
	var music struct {
		ID string `json:"id"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &music))

	// The fan licenses it
	code, response = suite.request("POST", "/v1/music/"+music.ID+"/licenses", fanToken, nil)
	require.Equal(suite.T(), http.StatusCreated, code, response.Error)
	var minted struct {
		Result struct {
			Kind    string `json:"kind"`
			License struct {
				ID string `json:"id"`
			} `json:"license"`
		} `json:"result"`
		Ledger struct {
			Licenses []interface{} `json:"licenses"`
		} `json:"ledger"`
		ExplorerURL string `json:"explorer_url"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &minted))
	assert.Equal(suite.T(), "committed", minted.Result.Kind)
	assert.Len(suite.T(), minted.Ledger.Licenses, 1)
	assert.Contains(suite.T(), minted.ExplorerURL, "https://aeneid.storyscan.io/tx/0x")

	// Two royalty payments against the license
	for _, amount := range []string{"2", "4"} {
		code, response = suite.request("POST", "/v1/music/"+music.ID+"/royalties", fanToken, gin.H{
			"license_id": minted.Result.License.ID,
			"amount":     amount,
		})
		require.Equal(suite.T(), http.StatusCreated, code, response.Error)
	}

	code, response = suite.request("GET", "/v1/music/"+music.ID+"/royalties/claimable", "", nil)
	require.Equal(suite.T(), http.StatusOK, code)
	var claimable struct {
		OnChain string `json:"onchain"`
		Tracked string `json:"tracked"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &claimable))
	assert.Equal(suite.T(), "6", claimable.OnChain)
	assert.Equal(suite.T(), "0.6", claimable.Tracked)

	// Only the owner can claim
	code, _ = suite.request("POST", "/v1/music/"+music.ID+"/royalties/claim", fanToken, gin.H{"ip_id": ipID})
	assert.Equal(suite.T(), http.StatusForbidden, code)

	code, response = suite.request("POST", "/v1/music/"+music.ID+"/royalties/claim", creatorToken, gin.H{"ip_id": ipID})
	require.Equal(suite.T(), http.StatusCreated, code, response.Error)
	var claimed struct {
		Result struct {
			Claim struct {
				Amount string `json:"amount"`
			} `json:"claim"`
		} `json:"result"`
		Ledger struct {
			RoyaltyPayments []struct {
				IsClaimed bool `json:"is_claimed"`
			} `json:"royalty_payments"`
		} `json:"ledger"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &claimed))
	assert.Equal(suite.T(), "0.6", claimed.Result.Claim.Amount)
	require.Len(suite.T(), claimed.Ledger.RoyaltyPayments, 2)
	for _, payment := range claimed.Ledger.RoyaltyPayments {
		assert.True(suite.T(), payment.IsClaimed)
	}
}

func (suite *APITestSuite) TestErrorMapping() {
	creatorToken, _ := suite.connect("0x00000000000000000000000000000000000000c2")

	code, response := suite.request("POST", "/v1/music", creatorToken, gin.H{
		"title":          "Pending",
		"audio_ipfs_cid": "bafyaudio",
		"image_ipfs_cid": "bafyimage",
	})
	require.Equal(suite.T(), http.StatusCreated, code)
	var music struct {
		ID string `json:"id"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &music))

	// Not on-chain yet
	code, response = suite.request("POST", "/v1/music/"+music.ID+"/licenses", creatorToken, nil)
	assert.Equal(suite.T(), http.StatusConflict, code)
	assert.Equal(suite.T(), "CONFLICT", response.Error.Code)

	// Unknown track
	code, response = suite.request("POST", "/v1/music/6f1c1a4e-5f39-4d59-9a3c-8d1f3c1b0a11/licenses", creatorToken, nil)
	assert.Equal(suite.T(), http.StatusNotFound, code)
	assert.Equal(suite.T(), "Track not found", response.Error.Message)

	// Bad input
	code, response = suite.request("POST", "/v1/music", creatorToken, gin.H{
		"title":          "Bad",
		"audio_ipfs_cid": "a",
		"image_ipfs_cid": "i",
		"pricing":        gin.H{"royalty": "150"},
	})
	assert.Equal(suite.T(), http.StatusBadRequest, code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", response.Error.Code)

	// No token
	code, _ = suite.request("POST", "/v1/music/"+music.ID+"/like", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, code)
}

func (suite *APITestSuite) TestTipsAndLikes() {
	creatorToken, _ := suite.connect("0x00000000000000000000000000000000000000c3")
	fanToken, fanID := suite.connect("0x00000000000000000000000000000000000000f3")

	code, response := suite.request("POST", "/v1/music", creatorToken, gin.H{
		"title":          "Tippable",
		"audio_ipfs_cid": "bafyaudio",
		"image_ipfs_cid": "bafyimage",
		"ip_id":          "0x00000000000000000000000000000000000000e3",
		"license_id":     "1",
	})
	require.Equal(suite.T(), http.StatusCreated, code)
	var music struct {
		ID string `json:"id"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &music))

	code, response = suite.request("POST", "/v1/music/"+music.ID+"/tips", fanToken, gin.H{"amount": "0.5"})
	require.Equal(suite.T(), http.StatusCreated, code, response.Error)

	code, response = suite.request("GET", "/v1/music/"+music.ID+"/tips", "", nil)
	require.Equal(suite.T(), http.StatusOK, code)
	var tips struct {
		Tips []struct {
			AccountID string `json:"account_id"`
			Amount    string `json:"tip_amount"`
		} `json:"tips"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &tips))
	require.Len(suite.T(), tips.Tips, 1)
	assert.Equal(suite.T(), fanID, tips.Tips[0].AccountID)
	assert.Equal(suite.T(), "0.5", tips.Tips[0].Amount)

	code, response = suite.request("GET", "/v1/accounts/"+fanID+"/tips", "", nil)
	require.Equal(suite.T(), http.StatusOK, code)
	var sent struct {
		Tips []struct {
			MusicID string `json:"music_id"`
			Amount  string `json:"tip_amount"`
		} `json:"tips"`
	}
	require.NoError(suite.T(), json.Unmarshal(response.Data, &sent))
	require.Len(suite.T(), sent.Tips, 1)
	assert.Equal(suite.T(), music.ID, sent.Tips[0].MusicID)

	code, response = suite.request("POST", "/v1/music/"+music.ID+"/like", fanToken, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	var like services.LikeStatus
	require.NoError(suite.T(), json.Unmarshal(response.Data, &like))
	assert.True(suite.T(), like.Liked)
	assert.Equal(suite.T(), int64(1), like.Likes)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
