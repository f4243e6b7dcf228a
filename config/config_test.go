package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/greez/greez/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Environment: "development"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg = &Config{Environment: "production"}
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())

	cfg = &Config{Environment: "staging"}
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestShopifyEnabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.ShopifyEnabled())

	cfg.Shopify.ShopDomain = "greez.myshopify.com"
	assert.False(t, cfg.ShopifyEnabled())

	cfg.Shopify.AccessToken = "shpat_x"
	assert.True(t, cfg.ShopifyEnabled())
}

func TestLoadWithOptions(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("ROOT_EMAIL", "root@greez.test")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("DB_HOST", "testhost")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "greez_test")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SECRET_KEY", "test-key")
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "greez.myshopify.com")
	t.Setenv("SHOPIFY_PUBLISH_TIMEOUT", "5s")
	t.Setenv("API_ENDPOINT", "https://api.greez.test")

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "testhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "testuser", cfg.Database.User)
	assert.Equal(t, "testpass", cfg.Database.Password)
	assert.Equal(t, "greez_test", cfg.Database.DBName)
	assert.Equal(t, 10*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "root@greez.test", cfg.RootEmail)
	assert.Equal(t, []byte(testJWTSecret), cfg.Security.JWTSecret)
	assert.Equal(t, "test-key", cfg.Security.SecretKey)
	assert.Equal(t, 720*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, "greez.myshopify.com", cfg.Shopify.ShopDomain)
	assert.Equal(t, "2024-10", cfg.Shopify.APIVersion)
	assert.Equal(t, 5*time.Second, cfg.Shopify.PublishTimeout)
	assert.Equal(t, 4, cfg.Shopify.BulkConcurrency)
	assert.Equal(t, 5*time.Minute, cfg.Shopify.ClaimTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.InvitationTTL)
	assert.Equal(t, "https://api.greez.test", cfg.PartnerURL, "partner URL falls back to the API endpoint")
	assert.Equal(t, VERSION, cfg.Version)
}

func TestLoadWithOptions_SecretKeyDefaultsToJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, testJWTSecret, cfg.Security.SecretKey)
}

func TestLoadWithOptions_EncryptedShopifyToken(t *testing.T) {
	encrypted, err := crypto.EncryptString("shpat_secret", "storage-passphrase")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("SECRET_KEY", "storage-passphrase")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")
	t.Setenv("SHOPIFY_ACCESS_TOKEN_ENCRYPTED", encrypted)

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "shpat_secret", cfg.Shopify.AccessToken)

	t.Setenv("SECRET_KEY", "wrong-passphrase")
	_, err = LoadWithOptions(LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPIFY_ACCESS_TOKEN_ENCRYPTED")
}

func TestLoadWithOptions_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadWithOptions(LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoadWithOptions_ShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := LoadWithOptions(LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoadWithOptions_EnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "JWT_SECRET=" + testJWTSecret + "\nSERVER_PORT=7000\nREDIS_ADDR=localhost:6379\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(content), 0600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := LoadWithOptions(LoadOptions{EnvFile: ".env.test"})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
}

func TestLoadWithOptions_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	_, err := LoadWithOptions(LoadOptions{EnvFile: ".env.does-not-exist"})
	require.NoError(t, err)
}
