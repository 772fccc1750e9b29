package fallback

// DefaultCatalog returns the built-in task templates. Order matters: it is
// the deterministic tie-break when two templates score equally.
func DefaultCatalog() []Template {
	return []Template{
		fibonacciTemplate(),
		calculatorTemplate(),
		restAPITemplate(),
		webScraperTemplate(),
		helloWorldTemplate(),
	}
}

func fibonacciTemplate() Template {
	return Template{
		Name: "fibonacci",
		Keywords: []Keyword{
			{Term: "fibonacci", Weight: 1.0},
			{Term: "fib", Weight: 1.0},
			{Term: "sequence", Weight: 0.25},
		},
		Explanation: "Iterative Fibonacci implementation. Computes the n-th number in O(n) time and constant space, then prints the first ten values.",
		Snippets: map[string]string{
			"python": `def fibonacci(n):
    """Return the n-th Fibonacci number (0-indexed)."""
    if n < 0:
        raise ValueError("n must be non-negative")
    a, b = 0, 1
    for _ in range(n):
        a, b = b, a + b
    return a


if __name__ == "__main__":
    for i in range(10):
        print(fibonacci(i))
`,
			"javascript": `function fibonacci(n) {
  if (n < 0) {
    throw new RangeError("n must be non-negative");
  }
  let a = 0;
  let b = 1;
  for (let i = 0; i < n; i++) {
    [a, b] = [b, a + b];
  }
  return a;
}

for (let i = 0; i < 10; i++) {
  console.log(fibonacci(i));
}
`,
			"go": `package main

import "fmt"

func fibonacci(n int) int {
	a, b := 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a
}

func main() {
	for i := 0; i < 10; i++ {
		fmt.Println(fibonacci(i))
	}
}
`,
		},
	}
}

func calculatorTemplate() Template {
	return Template{
		Name: "calculator",
		Keywords: []Keyword{
			{Term: "calculator", Weight: 1.0},
			{Term: "calculate", Weight: 0.75},
			{Term: "arithmetic", Weight: 0.5},
		},
		Explanation: "A small four-operation calculator with input validation and a division-by-zero guard.",
		Snippets: map[string]string{
			"python": `def calculate(a, op, b):
    """Apply a basic arithmetic operation to two numbers."""
    if op == "+":
        return a + b
    if op == "-":
        return a - b
    if op == "*":
        return a * b
    if op == "/":
        if b == 0:
            raise ZeroDivisionError("division by zero")
        return a / b
    raise ValueError(f"unknown operator: {op}")


if __name__ == "__main__":
    print(calculate(6, "*", 7))
`,
			"javascript": `function calculate(a, op, b) {
  switch (op) {
    case "+":
      return a + b;
    case "-":
      return a - b;
    case "*":
      return a * b;
    case "/":
      if (b === 0) {
        throw new Error("division by zero");
      }
      return a / b;
    default:
      throw new Error("unknown operator: " + op);
  }
}

console.log(calculate(6, "*", 7));
`,
			"go": `package main

import (
	"errors"
	"fmt"
)

func calculate(a float64, op string, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", op)
	}
}

func main() {
	result, err := calculate(6, "*", 7)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(result)
}
`,
		},
	}
}

func restAPITemplate() Template {
	return Template{
		Name: "rest-api-skeleton",
		Keywords: []Keyword{
			{Term: "rest", Weight: 0.6},
			{Term: "api", Weight: 0.6},
			{Term: "endpoint", Weight: 0.5},
			{Term: "server", Weight: 0.4},
			{Term: "http", Weight: 0.4},
		},
		Explanation: "Minimal REST API skeleton with a health route and one JSON resource endpoint. Extend the handler table with your own routes.",
		Snippets: map[string]string{
			"python": `from http.server import BaseHTTPRequestHandler, HTTPServer
import json


class Handler(BaseHTTPRequestHandler):
    def do_GET(self):
        if self.path == "/health":
            body = {"status": "ok"}
        elif self.path == "/api/items":
            body = {"items": []}
        else:
            self.send_error(404)
            return
        payload = json.dumps(body).encode()
        self.send_response(200)
        self.send_header("Content-Type", "application/json")
        self.end_headers()
        self.wfile.write(payload)


if __name__ == "__main__":
    HTTPServer(("", 8000), Handler).serve_forever()
`,
			"javascript": `const http = require("http");

const routes = {
  "/health": () => ({ status: "ok" }),
  "/api/items": () => ({ items: [] }),
};

const server = http.createServer((req, res) => {
  const handler = routes[req.url];
  if (!handler) {
    res.writeHead(404);
    res.end();
    return;
  }
  res.writeHead(200, { "Content-Type": "application/json" });
  res.end(JSON.stringify(handler()));
});

server.listen(8000);
`,
			"go": `package main

import (
	"encoding/json"
	"log"
	"net/http"
)

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string][]string{"items": {}})
	})
	log.Fatal(http.ListenAndServe(":8000", mux))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
`,
		},
	}
}

func webScraperTemplate() Template {
	return Template{
		Name: "web-scraper",
		Keywords: []Keyword{
			{Term: "scraper", Weight: 1.0},
			{Term: "scrape", Weight: 1.0},
			{Term: "crawl", Weight: 0.75},
			{Term: "crawler", Weight: 0.75},
		},
		Explanation: "Fetches a page and extracts anchor targets with a conservative timeout. Swap the URL and the extraction rule to suit your target.",
		Snippets: map[string]string{
			"python": `import re
import urllib.request

URL = "https://example.com"


def scrape(url):
    """Fetch a page and return all anchor hrefs found in the markup."""
    with urllib.request.urlopen(url, timeout=10) as resp:
        html = resp.read().decode("utf-8", errors="replace")
    return re.findall(r'href="([^"]+)"', html)


if __name__ == "__main__":
    for link in scrape(URL):
        print(link)
`,
			"javascript": `const URL = "https://example.com";

async function scrape(url) {
  const resp = await fetch(url, { signal: AbortSignal.timeout(10000) });
  const html = await resp.text();
  return [...html.matchAll(/href="([^"]+)"/g)].map((m) => m[1]);
}

scrape(URL)
  .then((links) => links.forEach((l) => console.log(l)))
  .catch((err) => console.error(err));
`,
			"go": `package main

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

var hrefPattern = regexp.MustCompile("href=\"([^\"]+)\"")

func scrape(url string) ([]string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var links []string
	for _, m := range hrefPattern.FindAllStringSubmatch(string(body), -1) {
		links = append(links, m[1])
	}
	return links, nil
}

func main() {
	links, err := scrape("https://example.com")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, l := range links {
		fmt.Println(l)
	}
}
`,
		},
	}
}

func helloWorldTemplate() Template {
	return Template{
		Name: "hello-world",
		Keywords: []Keyword{
			{Term: "hello", Weight: 0.6},
			{Term: "world", Weight: 0.6},
			{Term: "print", Weight: 0.3},
		},
		Explanation: "The smallest runnable program for the requested language.",
		Snippets: map[string]string{
			"python": `print("Hello, World!")
`,
			"javascript": `console.log("Hello, World!");
`,
			"go": `package main

import "fmt"

func main() {
	fmt.Println("Hello, World!")
}
`,
		},
	}
}
