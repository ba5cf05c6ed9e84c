package stac

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/util"
)

// Band assets on the Planetary Computer are readable only through signed
// URLs. Tokens are per-collection SAS tokens with an expiry; the Signer
// caches them for the duration of a run.

// tokenExpirySlack is how long before actual expiry a cached token is renewed
const tokenExpirySlack = 5 * time.Minute

type sasToken struct {
	Token  string `json:"token"`
	Expiry string `json:"msft:expiry"`
}

var requestSasToken = func(context *Context, collection string) (*sasToken, error) {
	var token sasToken
	tokenURL := strings.TrimSuffix(context.BaseSasURL, "/") + "/token/" + collection

	util.LogAudit(context, util.LogAuditInput{
		Actor: "anon user", Action: "GET", Actee: tokenURL, Message: "Requesting asset signing token", Severity: util.INFO,
	})
	if _, err := util.ReqByObjJSON("GET", tokenURL, "", nil, &token); err != nil {
		return nil, err
	}
	util.LogAudit(context, util.LogAuditInput{
		Actor: tokenURL, Action: "GET response", Actee: "anon user", Message: "Receiving asset signing token", Severity: util.INFO,
	})

	return &token, nil
}

type cachedToken struct {
	token   string
	expires time.Time
}

// Signer signs asset URLs with cached per-collection SAS tokens
type Signer struct {
	Context *Context

	mutex  sync.Mutex
	tokens map[string]cachedToken
}

// NewSigner creates a Signer for the given catalog context
func NewSigner(context *Context) *Signer {
	return &Signer{Context: context, tokens: make(map[string]cachedToken)}
}

func (s *Signer) token(collection string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if cached, ok := s.tokens[collection]; ok && time.Now().Add(tokenExpirySlack).Before(cached.expires) {
		return cached.token, nil
	}

	token, err := requestSasToken(s.Context, collection)
	if err != nil {
		return "", err
	}
	expires, err := model.ParseStacTime(token.Expiry)
	if err != nil {
		return "", fmt.Errorf("Could not parse token expiry: %v", err)
	}

	s.tokens[collection] = cachedToken{token: token.Token, expires: expires}
	return token.Token, nil
}

// SignURL returns a copy of the input URL with the collection's SAS token
// appended to its query string
func (s *Signer) SignURL(collection string, input url.URL) (url.URL, error) {
	token, err := s.token(collection)
	if err != nil {
		return input, err
	}

	signed := input
	if signed.RawQuery == "" {
		signed.RawQuery = token
	} else {
		signed.RawQuery += "&" + token
	}
	return signed, nil
}

// SignSceneAssets returns copies of the scene results with their band asset
// URLs signed for fetching
func (s *Signer) SignSceneAssets(collection string, scenes []model.SceneSearchResult) ([]model.SceneSearchResult, error) {
	signed := make([]model.SceneSearchResult, len(scenes))
	for i, scene := range scenes {
		signed[i] = scene
		if scene.SentinelBandAssets == nil {
			continue
		}

		red, err := s.SignURL(collection, scene.SentinelBandAssets.Red)
		if err != nil {
			return nil, err
		}
		nir, err := s.SignURL(collection, scene.SentinelBandAssets.NIR)
		if err != nil {
			return nil, err
		}
		signed[i].SentinelBandAssets = &model.SentinelBandAssets{Red: red, NIR: nir}
	}
	return signed, nil
}
