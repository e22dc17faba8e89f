package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const checkoutValueKey = "checkout"

// Manager 会话管理：Cookie 中只保存不透明的会话 Key，结算会话优先存 Redis，未启用时存入 Cookie
type Manager struct {
	cfg      config.SessionConfig
	store    *sessions.CookieStore
	remember *securecookie.SecureCookie
	ttl      time.Duration
}

// NewManager 创建会话管理器
func NewManager(cfg config.SessionConfig) *Manager {
	authKey := []byte(cfg.AuthKey)
	keyPairs := [][]byte{authKey}
	if encryptKey := strings.TrimSpace(cfg.EncryptKey); encryptKey != "" {
		keyPairs = append(keyPairs, []byte(encryptKey))
	}
	store := sessions.NewCookieStore(keyPairs...)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAgeSeconds,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "storefront_session"
	}
	if cfg.RememberCookieName == "" {
		cfg.RememberCookieName = "remember"
	}

	remember := securecookie.New(authKey, nil)
	remember.SetSerializer(securecookie.JSONEncoder{})
	remember.MaxAge(rememberMaxAge(cfg))

	ttl := time.Duration(cfg.MaxAgeSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{cfg: cfg, store: store, remember: remember, ttl: ttl}
}

// Key 返回会话 Key，不存在时生成并写入 Cookie
func (m *Manager) Key(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := m.store.Get(r, m.cfg.CookieName)
	if err != nil {
		// 签名失效的旧 Cookie 直接替换
		logger.Debugw("session_cookie_invalid", "error", err)
	}
	if key, ok := sess.Values[constants.SessionValueKey].(string); ok && key != "" {
		return key, nil
	}
	key := uuid.NewString()
	sess.Values[constants.SessionValueKey] = key
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return key, nil
}

// LoadCheckout 读取结算会话，不存在时返回初始会话
func (m *Manager) LoadCheckout(ctx context.Context, r *http.Request, key string) (*checkout.Session, error) {
	state := &checkout.Session{Step: 1}
	if cache.Enabled() {
		found, err := cache.GetJSON(ctx, checkoutCacheKey(key), state)
		if err != nil {
			return nil, err
		}
		if !found {
			return &checkout.Session{Step: 1}, nil
		}
		return state, nil
	}
	sess, _ := m.store.Get(r, m.cfg.CookieName)
	raw, ok := sess.Values[checkoutValueKey].(string)
	if !ok || raw == "" {
		return state, nil
	}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		logger.Warnw("session_checkout_decode_failed", "error", err)
		return &checkout.Session{Step: 1}, nil
	}
	return state, nil
}

// SaveCheckout 保存结算会话
func (m *Manager) SaveCheckout(ctx context.Context, w http.ResponseWriter, r *http.Request, key string, state *checkout.Session) error {
	if state == nil {
		return nil
	}
	if cache.Enabled() {
		return cache.SetJSON(ctx, checkoutCacheKey(key), state, m.ttl)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	sess, _ := m.store.Get(r, m.cfg.CookieName)
	sess.Values[constants.SessionValueKey] = key
	sess.Values[checkoutValueKey] = string(payload)
	return sess.Save(r, w)
}

// rememberValue 记住地址 Cookie 内容：订单会话 Key 及其哈希
type rememberValue struct {
	Hash string `json:"hash"`
	Key  string `json:"key"`
}

// Remember 写入记住地址 Cookie
func (m *Manager) Remember(w http.ResponseWriter, orderKey string) error {
	if orderKey == "" {
		return errors.New("order key is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(orderKey), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	encoded, err := m.remember.Encode(m.cfg.RememberCookieName, rememberValue{Hash: string(hash), Key: orderKey})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.RememberCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   rememberMaxAge(m.cfg),
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Forget 清除记住地址 Cookie
func (m *Manager) Forget(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.RememberCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// RememberedKey 校验记住地址 Cookie 并返回上一笔订单的会话 Key，无效时返回空字符串
func (m *Manager) RememberedKey(r *http.Request) string {
	cookie, err := r.Cookie(m.cfg.RememberCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	var value rememberValue
	if err := m.remember.Decode(m.cfg.RememberCookieName, cookie.Value, &value); err != nil {
		logger.Debugw("session_remember_cookie_invalid", "error", err)
		return ""
	}
	if bcrypt.CompareHashAndPassword([]byte(value.Hash), []byte(value.Key)) != nil {
		return ""
	}
	return value.Key
}

func checkoutCacheKey(key string) string {
	return fmt.Sprintf("%s:%s", constants.CacheKeyCheckoutSession, key)
}

func rememberMaxAge(cfg config.SessionConfig) int {
	days := cfg.RememberMaxAgeDays
	if days <= 0 {
		days = 365
	}
	return days * 24 * 60 * 60
}
