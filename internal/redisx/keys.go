package redisx

// Admin session allowlist: admin:session:{token_id} -> admin email.
// A key's TTL matches the token's expiry; deleting it revokes the session.
const KeyAdminSession = "admin:session:%s"
