package structured

import (
	"fmt"
	"strings"

	"shate-rag-be/pkg/mongostore"
)

const (
	// NoResultsMessage is the whole answer for an empty result set.
	NoResultsMessage = "Rất tiếc, mình không tìm thấy thông tin phù hợp với yêu cầu của bạn."
	// FailureMessage replaces any store or validation error shown to the customer.
	FailureMessage = "Rất tiếc, mình chưa thể tra cứu dữ liệu cho yêu cầu này lúc này."
)

const queryAgentPrompt = `You are an agent that answers questions by querying a MongoDB database.
Write one read-only aggregation pipeline that answers the user's question and submit it with the mongodb_query tool.

Rules:
- The query must have the form db.<collection>.aggregate([...]).
- Only use the collections and fields listed in the schema you were given. Never guess other collection names.
- Never use $out or $merge or any stage that writes data.
- Unless the user asks for a specific number of results, return at most 5 documents with $limit.
- Sort by a relevant field when it helps to show the most interesting documents first.
- Project only the fields needed to answer the question.
- Reference documents in other allowed collections with $lookup on the ObjectId fields (for example productId).`

const retryNudge = "Bạn chưa gọi công cụ mongodb_query. Hãy gửi đúng một truy vấn aggregation qua công cụ đó."

const formatTemplate = `Bạn định dạng kết quả truy vấn MongoDB thành câu trả lời cho khách hàng của The Shate.

Câu hỏi của khách hàng:
{question}

Kết quả truy vấn (JSON):
{docs}

Yêu cầu:
- Viết câu trả lời ngắn gọn bằng Markdown (danh sách, bảng hoặc đoạn văn, tùy dữ liệu).
- Giữ nguyên các con số như giá, số lượng, phần trăm.
- Không hiển thị JSON thô, mã định danh ObjectId hay tên trường kỹ thuật.
- Nếu kết quả rỗng, trả lời đúng câu: "` + NoResultsMessage + `"`

// truncatedNote tells the formatter the rows are a prefix, so it does not present them as the full set.
var truncatedNote = fmt.Sprintf("\n- Kết quả chỉ gồm %d bản ghi đầu tiên, danh sách thực tế dài hơn. Hãy nói rõ điều này với khách hàng và không khẳng định đây là toàn bộ.", mongostore.MaxResultDocuments)

func FormatPrompt(question, docs string, truncated bool) string {
	prompt := strings.NewReplacer("{question}", question, "{docs}", docs).Replace(formatTemplate)
	if truncated {
		prompt += truncatedNote
	}
	return prompt
}
