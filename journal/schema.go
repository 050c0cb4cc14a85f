package journal

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	volume REAL NOT NULL,
	price REAL NOT NULL,
	status TEXT NOT NULL,
	broker_ticket TEXT NOT NULL DEFAULT '',
	filled_price REAL NOT NULL DEFAULT 0,
	filled_volume REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol);
CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
`
