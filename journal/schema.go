package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	request_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	volume REAL NOT NULL,
	price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	comment TEXT NOT NULL,
	order_id INTEGER NOT NULL,
	deal_id INTEGER NOT NULL,
	retcode INTEGER NOT NULL,
	retcode_text TEXT NOT NULL,
	result_comment TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_time ON orders(time);
CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	equity REAL NOT NULL,
	margin_used REAL NOT NULL,
	margin_free REAL NOT NULL,
	margin_level REAL NOT NULL,
	floating_profit REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
