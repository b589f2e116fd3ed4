// Package cookie manages HTTP cookies with optional signing and encryption.
//
// A Manager without a secret handles plain cookies only; configuring a
// 32+ byte secret via WithSecret enables HMAC-SHA256 signed cookies,
// AES-GCM encrypted cookies, and encrypted one-shot flash messages.
package cookie
