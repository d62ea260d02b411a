package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// JWKSHandler publishes the token verification key.
//
//	@Summary		Get JWKS
//	@Description	The RSA public key used to verify access and refresh tokens, as a JSON Web Key Set.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	accountsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, accountsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
