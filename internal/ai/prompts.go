package ai

const summarizePromptTemplate = `Please provide a concise summary of the following text.
The summary should be approximately %d characters or less.
Focus on the main points and key information.

Text to summarize:
%s

Provide only the summary without any additional text or formatting.`

const classifyPromptTemplate = `Analyze the following content and:
1. Choose the most appropriate category (select from: %s)
2. Generate 3-5 relevant tags that capture the main topics

Content: %s

Return ONLY a JSON object in this exact format:
{"category": "Category Name", "tags": ["tag1", "tag2", "tag3"]}`

const keywordsPromptTemplate = `Extract %d key terms or phrases from the following text.
Focus on important concepts, technologies, topics, or entities.

Text: %s

Return ONLY a JSON object:
{"keywords": ["keyword1", "keyword2", "keyword3"]}`
