// Package entity defines data structures shared by the web layer of recipe-box.
package entity

import (
	"crypto/tls"
	"math"
	"net"
	"net/url"
	"strings"
	"time"

	"recipe-box/util/common"
)

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"` // Indicates if the operation was successful
	Msg     string `json:"msg"`     // Response message text
	Obj     any    `json:"obj"`     // Optional data object
}

// AllSetting contains the configuration settings of the recipe-box server.
type AllSetting struct {
	// Web server settings
	WebListen     string `json:"webListen" form:"webListen"`         // Web server listen IP address
	WebDomain     string `json:"webDomain" form:"webDomain"`         // Web server domain for domain validation
	WebPort       int    `json:"webPort" form:"webPort"`             // Web server port number
	WebCertFile   string `json:"webCertFile" form:"webCertFile"`     // Path to SSL certificate file
	WebKeyFile    string `json:"webKeyFile" form:"webKeyFile"`       // Path to SSL private key file
	WebBasePath   string `json:"webBasePath" form:"webBasePath"`     // Base path for application URLs
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // Session maximum age in minutes
	TimeLocation  string `json:"timeLocation" form:"timeLocation"`   // Time zone location

	// Recipe API settings
	RecipeApiURL string `json:"recipeApiURL" form:"recipeApiURL"` // Base URL of the recipe API
	RecipeApiKey string `json:"recipeApiKey" form:"recipeApiKey"` // API key for the recipe API

	// Search history settings
	HistoryRetentionDays int `json:"historyRetentionDays" form:"historyRetentionDays"` // Days to keep search history rows
}

// CheckValid validates the settings, checking the listen address, port,
// SSL certificate pair, recipe API URL and time zone.
func (s *AllSetting) CheckValid() error {
	if s.WebListen != "" {
		ip := net.ParseIP(s.WebListen)
		if ip == nil {
			return common.NewError("web listen is not valid ip:", s.WebListen)
		}
	}

	if s.WebPort <= 0 || s.WebPort > math.MaxUint16 {
		return common.NewError("web port is not a valid port:", s.WebPort)
	}

	if s.WebCertFile != "" || s.WebKeyFile != "" {
		_, err := tls.LoadX509KeyPair(s.WebCertFile, s.WebKeyFile)
		if err != nil {
			return common.NewErrorf("cert file <%v> or key file <%v> invalid: %v", s.WebCertFile, s.WebKeyFile, err)
		}
	}

	if s.RecipeApiURL != "" {
		u, err := url.Parse(s.RecipeApiURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return common.NewError("recipe API URL is not valid:", s.RecipeApiURL)
		}
	}

	if s.HistoryRetentionDays < 0 {
		return common.NewError("history retention days can not be negative:", s.HistoryRetentionDays)
	}

	if !strings.HasPrefix(s.WebBasePath, "/") {
		s.WebBasePath = "/" + s.WebBasePath
	}
	if !strings.HasSuffix(s.WebBasePath, "/") {
		s.WebBasePath += "/"
	}

	_, err := time.LoadLocation(s.TimeLocation)
	if err != nil {
		return common.NewError("time location not exist:", s.TimeLocation)
	}

	return nil
}
