package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"packetlog/config"
	"packetlog/internal/core"
	cErr "packetlog/internal/pkg/error"
	"packetlog/internal/pkg/response"
	"packetlog/internal/telemetry"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

var errBodyTooLarge = errors.New("request body too large")

// Decompress buffers the request body, enforcing INGEST__MAX_BODY_BYTES on
// both the wire size and the decoded size, and replaces it with the decoded
// bytes. Log shippers commonly send gzip, zstd or brotli batches.
type Decompress struct {
	logger   *zap.Logger
	trace    *telemetry.Trace
	maxBytes int64
}

func NewDecompress(logger *zap.Logger, trace *telemetry.Trace, config *config.Configuration) *Decompress {
	return &Decompress{logger: logger, trace: trace, maxBytes: config.Ingest.MaxBodyBytes}
}

func (m *Decompress) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody || skipPath(c.FullPath()) {
			c.Next()
			return
		}
		_, span, end := m.trace.WithSpan(m.trace.GetTraceContext(c), string(core.SpanDecompressMiddleware))

		raw, err := readLimited(bodyReader(c, m.maxBytes), m.maxBytes)
		if err != nil {
			end(err)
			m.abort(c, err, "read")
			return
		}
		encoding := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding")))
		decoded, err := m.decode(raw, encoding)
		m.trace.ApplyTraceAttributes(span, core.TraceDecompressMeta{
			Encoding:     encoding,
			CompressedB:  len(raw),
			DecodedBytes: len(decoded),
		})
		end(err)
		if err != nil {
			m.abort(c, err, encoding)
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(decoded))
		c.Request.ContentLength = int64(len(decoded))
		c.Request.Header.Set("Content-Length", strconv.Itoa(len(decoded)))
		c.Request.Header.Del("Content-Encoding")
		c.Set(core.ContextContentEncodingKey, encoding)
		c.Next()
	}
}

func (m *Decompress) abort(c *gin.Context, err error, encoding string) {
	m.logger.Warn("unreadable request body",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("encoding", encoding),
	)
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errBodyTooLarge), errors.As(err, &maxErr):
		response.AbortWithError(c, cErr.PayloadTooLarge(fmt.Sprintf("request body exceeds %d bytes", m.maxBytes)))
	default:
		response.AbortWithError(c, cErr.BadRequestEncoding(err.Error()))
	}
}

// decode picks the codec from Content-Encoding, falling back to magic bytes
// when the header is missing.
func (m *Decompress) decode(raw []byte, encoding string) ([]byte, error) {
	switch encoding {
	case "", "identity":
	case "gzip", "x-gzip":
		return m.readAll(gzip.NewReader(bytes.NewReader(raw)))
	case "deflate":
		return m.readAll(zlib.NewReader(bytes.NewReader(raw)))
	case "zstd":
		return m.decodeZstd(raw)
	case "br":
		return readLimited(brotli.NewReader(bytes.NewReader(raw)), m.maxBytes)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}

	switch {
	case isGzip(raw):
		return m.readAll(gzip.NewReader(bytes.NewReader(raw)))
	case isZlib(raw):
		return m.readAll(zlib.NewReader(bytes.NewReader(raw)))
	case isZstd(raw):
		return m.decodeZstd(raw)
	}
	return raw, nil
}

func (m *Decompress) readAll(r io.ReadCloser, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readLimited(r, m.maxBytes)
}

func (m *Decompress) decodeZstd(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return readLimited(dec, m.maxBytes)
}

func bodyReader(c *gin.Context, limit int64) io.Reader {
	if limit <= 0 {
		return c.Request.Body
	}
	return http.MaxBytesReader(c.Writer, c.Request.Body, limit)
}

// readLimited reads r fully; limit <= 0 disables the check.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errBodyTooLarge
	}
	return b, nil
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// zlib header: CMF 0x78 and (CMF<<8|FLG) divisible by 31
func isZlib(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x78 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

func isZstd(b []byte) bool {
	return len(b) >= 4 && b[0] == 0x28 && b[1] == 0xb5 && b[2] == 0x2f && b[3] == 0xfd
}
